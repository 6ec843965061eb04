// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

// Command stubd runs the in-memory TopLivres API stub for local
// development. State is seeded at startup and lost on exit.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/config"
	"github.com/fleuronvilik/toplivres-devgdk/internal/stubapi"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(slog.String("app", "toplivres-stubd"))
	slog.SetDefault(log)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("startup failure", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.IsProduction() {
		// The stub holds its state in memory and seeds demo credentials.
		log.Error("stubd refuses to run in production")
		os.Exit(1)
	}
	if cfg.Debug {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})).With(slog.String("app", "toplivres-stubd"))
		slog.SetDefault(log)
	}

	stub := stubapi.New(log)
	log.Info("stub_ready",
		slog.String("addr", cfg.StubAddr),
		// Export as CSRF_TOKEN for the client process.
		slog.String("csrf_token", stub.CSRFToken()),
	)

	server := &http.Server{
		Addr:              cfg.StubAddr,
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server stopped cleanly")
}
