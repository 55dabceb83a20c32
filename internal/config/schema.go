package config

// ServerConfig is the top-level YAML structure.
type ServerConfig struct {
	Version  string       `yaml:"version"`
	Server   ServerConf   `yaml:"server"`
	Specs    SpecsConf    `yaml:"specs"`
	Engine   EngineConf   `yaml:"engine"`
	LLM      LLMConf      `yaml:"llm"`
	Postgres PostgresConf `yaml:"postgres"`
}

// ServerConf holds HTTP listener settings.
type ServerConf struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"` // empty = all origins
}

// SpecsConf points at the DataSpec library and the LLM spec cache.
type SpecsConf struct {
	Dir      string `yaml:"dir"`
	CacheDir string `yaml:"cache_dir"`
}

// EngineConf holds tunable concurrency and size limits.
type EngineConf struct {
	Workers    int `yaml:"workers"`
	QueueDepth int `yaml:"queue_depth"`
	TimeoutMs  int `yaml:"timeout_ms"`
	MaxRows    int `yaml:"max_rows"`
	MaxSimDays int `yaml:"max_sim_days"`
}

// LLMConf selects the spec producer. APIKey is never read from YAML.
type LLMConf struct {
	Provider string `yaml:"provider"` // openai | huggingface | "" (disabled)
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"`
}

// PostgresConf configures the optional persistence sink. DSN may also come
// from DATABASE_URL.
type PostgresConf struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}
