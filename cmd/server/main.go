package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"emittr/connect4/internal/analytics"
	"emittr/connect4/internal/config"
	"emittr/connect4/internal/logging"
	"emittr/connect4/internal/server"
	"emittr/connect4/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	srvCfg := server.Config{
		IdleTimeout: cfg.IdleTimeout,
		Store:       storage.NewMemoryStore(),
		Logger:      logger,
	}
	if producer := analytics.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger); producer != nil {
		defer producer.Close()
		srvCfg.Analytics = producer
		logger.Info("publishing analytics", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(srvCfg).Run(ctx, cfg.ListenAddr(), cfg.SweepInterval)
}
