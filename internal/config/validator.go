package config

import (
	"fmt"
	"strings"
)

// LLM providers understood by the spec producer.
const (
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
)

// Validate checks the config for:
//   - Required fields
//   - Positive engine limits
//   - A known LLM provider with a model
func Validate(cfg *ServerConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	e := cfg.Engine
	for _, f := range []struct {
		name string
		v    int
	}{
		{"engine.workers", e.Workers},
		{"engine.queue_depth", e.QueueDepth},
		{"engine.timeout_ms", e.TimeoutMs},
		{"engine.max_rows", e.MaxRows},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Sprintf("%s: must be positive, got %d", f.name, f.v))
		}
	}
	if cfg.Specs.Dir == "" {
		errs = append(errs, "specs.dir is required")
	}

	switch cfg.LLM.Provider {
	case "":
	case ProviderOpenAI, ProviderHuggingFace:
		if cfg.LLM.Model == "" && cfg.LLM.Provider == ProviderHuggingFace {
			errs = append(errs, "llm.model is required for huggingface")
		}
	default:
		errs = append(errs, fmt.Sprintf("llm.provider: unknown provider %q (want %s or %s)", cfg.LLM.Provider, ProviderOpenAI, ProviderHuggingFace))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
