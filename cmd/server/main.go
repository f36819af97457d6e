package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/roamio/roamio-api/cmd/api"
	"github.com/roamio/roamio-api/pkg/config"
)

func main() {
	// .env is a development convenience; production sets real env vars.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Observability)
	slog.SetDefault(logger)

	deps, err := api.InitDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	if err := api.Run(deps); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.ObservabilityConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
