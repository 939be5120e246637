// Command orgwatch watches GitHub and HuggingFace organizations for new
// and updated artifacts and posts a consolidated report per poll cycle.
//
// Usage:
//
//	orgwatch -config orgwatch.yaml          # poll at the configured cadence
//	orgwatch -config orgwatch.yaml -once    # single cycle, then exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hazyhaar/orgwatch"
)

func main() {
	configPath := flag.String("config", "orgwatch.yaml", "path to orgwatch.yaml config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	once := flag.Bool("once", false, "run a single poll cycle and exit")
	flag.Parse()

	// Pick up GITHUB_TOKEN / WECHAT_WEBHOOK_URL from a local .env, if any.
	_ = godotenv.Load()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *once); err != nil {
		logger.Error("orgwatch: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string, once bool) error {
	cfg, err := orgwatch.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Info("orgwatch: config loaded",
		"github_orgs", cfg.GitHub.Orgs, "huggingface_orgs", cfg.Hub.Orgs,
		"interval", cfg.CheckInterval, "store", cfg.Store.Backend, "sink", cfg.Notify.Sink)

	svc, err := orgwatch.New(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if once {
		svc.RunOnce(ctx)
		return nil
	}
	return svc.Run(ctx)
}
