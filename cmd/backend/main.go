package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simple-repository/internal/audit"
	"simple-repository/internal/config"
	"simple-repository/internal/logger"
	"simple-repository/internal/server"
	"simple-repository/internal/storage"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger needs the config, so startup failures fall back
		// to the stdlib logger.
		log.Printf("service=backend msg=%q err=%v", "config_load_failed", err)
		os.Exit(1)
	}

	logg, err := logger.New(cfg.LogLevel, cfg.LogsDir())
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "logger_init_failed", err)
		os.Exit(1)
	}
	logg.Info("Simple Repository server v" + serviceVersion)

	if err := os.MkdirAll(cfg.UploadsDir(), 0o755); err != nil {
		logger.Err(logg, "create staging dir failed", "err", err)
		os.Exit(1)
	}
	server.SweepStaging(cfg.UploadsDir(), logg)

	var store storage.Store
	switch cfg.StorageBackend {
	case "s3":
		store, err = storage.NewS3(context.Background(), storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
	default:
		store, err = storage.NewLocal(cfg.FilesDir())
	}
	if err != nil {
		logger.Err(logg, "storage init failed", "backend", cfg.StorageBackend, "err", err)
		os.Exit(1)
	}

	var recorder *audit.Recorder
	if cfg.DatabaseURL != "" {
		recorder, err = audit.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Err(logg, "audit init failed", "err", err)
			os.Exit(1)
		}
		defer func() { _ = recorder.Close() }()
		logg.Info("audit trail enabled")
	}

	srv := server.New(cfg.Addr(), server.Config{
		SecretUpload:   cfg.SecretUpload,
		SecretDownload: cfg.SecretDownload,
		TrustProxy:     cfg.TrustProxy,
		StagingDir:     cfg.UploadsDir(),
		Store:          store,
		Log:            logg,
		Audit:          recorder,
	})

	errCh := make(chan error, 1)
	go func() {
		logg.Info("Now listening", "port", cfg.Port)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logg.Info("Stopping server...", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Err(logg, "shutdown failed", "err", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil {
			logger.Err(logg, "server failed", "err", err)
			os.Exit(1)
		}
	}
}
