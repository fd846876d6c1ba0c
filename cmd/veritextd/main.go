package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"veritext/internal/config"
	"veritext/internal/daemon"
	"veritext/internal/detector"
	"veritext/internal/logging"
	"veritext/internal/runs"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := runs.Open(cfg)
	if err != nil {
		logger.Error("open run registry", logging.Error(err))
		return
	}
	defer store.Close() //nolint:errcheck

	svc := detector.New(cfg, logger)
	d, err := daemon.New(cfg, store, svc, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	d.Stop()
	logger.Info("veritextd shutting down")
}
