package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"discflight/internal/config"
	"discflight/internal/daemonrun"
	"discflight/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := resolveOptions(os.Args[1:], os.Getenv)

	cfg, _, _, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := daemonrun.Run(ctx, cfg, daemonrun.Options{Stages: opts.stages, Logger: logger}); err != nil {
		logger.Error("discflightd exited", logging.Error(err))
		os.Exit(1)
	}
}
