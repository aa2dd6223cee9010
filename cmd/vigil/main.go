// main is the entry point of the Vigil dashboard backend.
// It initializes the configuration, logger and database pool, then serves the HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/vigil/internal/config"
	"github.com/woozymasta/vigil/internal/dashboard"
	"github.com/woozymasta/vigil/internal/fake"
	"github.com/woozymasta/vigil/internal/logger"
	"github.com/woozymasta/vigil/internal/maintenance"
	"github.com/woozymasta/vigil/internal/server"
	"github.com/woozymasta/vigil/internal/storage"
	"github.com/woozymasta/vigil/internal/vars"
)

func main() {
	cfg := config.Parse()

	logCloser := logger.Setup(cfg.Logger)
	defer func() { _ = logCloser.Close() }()

	log.Info().Str("version", vars.Version).Msg("Starting vigil service...")

	// Database pool, shared by every component for the process lifetime
	store, err := storage.New(cfg.Storage, storage.WithLocation(cfg.Server.Location()))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// data generation or database maintenance
	if cfg.Tasks.GenerateCount > 0 {
		if err := fake.GenerateData(ctx, store, cfg.Tasks.GenerateCount); err != nil {
			log.Error().Err(err).Msg("Failed to generate fake data")
		}
		return
	} else if maintenance.Run(ctx, cfg, store) {
		return
	}

	srv := server.New(dashboard.New(store), store, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
