// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/animerec/internal/api"
	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metadata"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/supervisor"
	"github.com/tomtom215/animerec/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})

	logging.Info().
		Str("catalog", cfg.Dataset.CatalogPath).
		Str("ratings", cfg.Dataset.RatingsPath).
		Str("reader", cfg.Dataset.Reader).
		Bool("metadata_enabled", cfg.Metadata.Enabled).
		Msg("Starting Animerec")

	src, err := dataset.NewSource(cfg.Dataset.Reader, cfg.Dataset.CatalogPath, cfg.Dataset.RatingsPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create dataset source")
	}

	metaSvc, err := metadata.New(cfg.Metadata)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize metadata service")
	}
	defer func() {
		if err := metaSvc.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing metadata store")
		}
	}()

	engine, err := recommend.NewEngine(recommend.FromAppConfig(cfg), src, metaSvc)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	// The API is useless without a model, so the first build is synchronous.
	buildStart := time.Now()
	if err := engine.Build(context.Background()); err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation model")
	}
	logging.Info().Dur("duration", time.Since(buildStart)).Msg("Recommendation model ready")

	mwConfig := api.DefaultChiMiddlewareConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	}
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	if cfg.Server.RateLimitWindow > 0 {
		mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	}

	handler := api.NewHandler(engine, metaSvc, cfg.Server.Timeout)
	router := api.NewRouter(handler, api.NewChiMiddleware(mwConfig))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddModelService(services.NewReloadService(engine, services.ReloadServiceConfig{
		Interval: cfg.Dataset.ReloadInterval,
	}))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Animerec stopped")
}
