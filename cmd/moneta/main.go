package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"moneta/internal/amqp"
	"moneta/internal/backend"
	"moneta/internal/cli"
	apphttp "moneta/internal/http"
	"moneta/internal/identity"
	"moneta/internal/services"
	"moneta/internal/ws"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg.DataBackend, cfg.LedgerFilePath, cfg.DefaultOwner, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	stores, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if stores.Cleanup != nil {
		defer func() {
			if err := stores.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	// Change publisher is optional: without AMQP the mirror pipeline
	// is simply off.
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			publisher = amqpClient
		}
	}

	broadcaster := ws.NewBroadcaster()
	broadcaster.Start()
	defer broadcaster.Stop()

	// Sessions require a signing key; without one the server runs
	// single-user under the default owner.
	var ident *identity.Provider
	if cfg.SessionSigningKey != "" {
		ident = identity.NewProvider(stores.Users, []byte(cfg.SessionSigningKey), cfg.SessionTTL)
		logger.Info("Sessions enabled", "ttl", cfg.SessionTTL)
	} else {
		logger.Info("No session signing key, running single-user", "owner", cfg.DefaultOwner)
	}

	svc := services.NewLedgerService(stores.Records, nil, cfg.GoalCents, publisher, broadcaster)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Service close failed", "error", err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, svc, ident, broadcaster, cfg.DefaultOwner, cfg.MutationRateLimit, cfg.MutationRateWindow)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting moneta server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
