package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"NewsCrawler/internal/app"
	"NewsCrawler/internal/config"
	"NewsCrawler/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	application := app.New(ctx, cfg, logger)

	if err := application.Run(ctx); err != nil {
		logger.Error("crawler stopped", "error", err)
		os.Exit(1)
	}
}
