package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/synthdata/internal/api"
	"github.com/gyaneshwarpardhi/synthdata/internal/config"
	"github.com/gyaneshwarpardhi/synthdata/internal/enforce"
	"github.com/gyaneshwarpardhi/synthdata/internal/engine"
	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
	"github.com/gyaneshwarpardhi/synthdata/internal/specgen"
	"github.com/gyaneshwarpardhi/synthdata/internal/store"
)

func main() {
	cfgPath := flag.String("config", "configs/server.yaml", "Path to server YAML config")
	envFile := flag.String("env", ".env", "Optional dotenv file with API keys and DATABASE_URL")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	config.LoadDotEnv(*envFile)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	// ── Spec library ─────────────────────────────────────────────────────────
	specs, err := spec.NewStore(cfg.Specs.Dir)
	if err != nil {
		slog.Error("failed to load specs", "dir", cfg.Specs.Dir, "err", err)
		os.Exit(1)
	}
	slog.Info("specs loaded", "dir", cfg.Specs.Dir, "count", len(specs.List()))
	specs.OnChange(func(id string) { slog.Info("spec reloaded", "id", id) })
	stopSpecs, err := specs.Watch()
	if err != nil {
		slog.Warn("spec watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopSpecs()
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline := engine.NewPipeline(logger, enforce.DefaultRegistry(), engine.PipelineOptions{
		MaxRows:    cfg.Engine.MaxRows,
		MaxSimDays: cfg.Engine.MaxSimDays,
	})
	eng := engine.New(ctx, pipeline, cfg.Engine)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.ServerConfig) {
		slog.Info("config reloaded; engine limits apply after restart",
			"workers", newCfg.Engine.Workers, "queue_depth", newCfg.Engine.QueueDepth)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── Optional spec producer and Postgres sink ─────────────────────────────
	opts := api.Options{Logger: logger, CORSOrigins: cfg.Server.CORSOrigins}
	if producer := newProducer(cfg.LLM); producer != nil {
		cached, err := specgen.NewCache(producer, cfg.Specs.CacheDir, logger)
		if err != nil {
			slog.Warn("spec cache unavailable, calling the model directly", "err", err)
			opts.Producer = producer
		} else {
			opts.Producer = cached
		}
		slog.Info("spec producer enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}
	if cfg.Postgres.DSN != "" {
		pool, err := store.Open(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			slog.Warn("postgres sink disabled", "err", err)
		} else {
			defer pool.Close()
			opts.Sink = store.NewSink(pool, logger)
			slog.Info("postgres sink enabled")
		}
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(eng, specs, opts)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Duration(cfg.Engine.TimeoutMs)*time.Millisecond + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop worker pool
	eng.Shutdown()
	slog.Info("goodbye")
}

func newProducer(c config.LLMConf) specgen.Producer {
	switch c.Provider {
	case config.ProviderOpenAI:
		if c.APIKey == "" {
			slog.Warn("llm provider set but " + config.EnvOpenAIKey + " is empty; spec generation disabled")
			return nil
		}
		return specgen.NewOpenAI(c.APIKey, c.Model, "")
	case config.ProviderHuggingFace:
		if c.APIKey == "" {
			slog.Warn("llm provider set but " + config.EnvHuggingFaceKey + " is empty; spec generation disabled")
			return nil
		}
		return specgen.NewHuggingFace(c.APIKey, c.Model)
	}
	return nil
}
