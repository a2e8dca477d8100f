// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/recommend"
)

// ModelBuilder is the part of recommend.Engine the reload loop needs.
type ModelBuilder interface {
	// SourceChanged reports whether the dataset files differ from the active snapshot.
	SourceChanged() (bool, error)

	// Build loads the dataset and publishes a new snapshot.
	Build(ctx context.Context) error
}

// ReloadServiceConfig holds configuration for the reload service.
type ReloadServiceConfig struct {
	// Interval between source checks. Zero or negative disables reloading.
	Interval time.Duration

	// BuildTimeout bounds one rebuild. Default: 30m
	BuildTimeout time.Duration
}

// ReloadService rebuilds the model snapshot when the dataset files change.
// A failed rebuild is logged and the previous snapshot keeps serving.
type ReloadService struct {
	engine ModelBuilder
	config ReloadServiceConfig
	logger zerolog.Logger
	name   string
}

// NewReloadService creates a reload service for engine.
func NewReloadService(engine ModelBuilder, cfg ReloadServiceConfig) *ReloadService {
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 30 * time.Minute
	}
	return &ReloadService{
		engine: engine,
		config: cfg,
		logger: logging.WithComponent("reload"),
		name:   "reload-service",
	}
}

// Serve implements suture.Service. With reloading disabled it idles until
// shutdown so the supervisor does not treat it as crashed.
func (s *ReloadService) Serve(ctx context.Context) error {
	if s.config.Interval <= 0 {
		s.logger.Debug().Msg("Dataset reloading disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	s.logger.Info().Dur("interval", s.config.Interval).Msg("Watching dataset for changes")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// check rebuilds once if the source changed.
func (s *ReloadService) check(ctx context.Context) {
	changed, err := s.engine.SourceChanged()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to fingerprint dataset")
		return
	}
	if !changed {
		return
	}

	buildCtx, cancel := context.WithTimeout(ctx, s.config.BuildTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Msg("Dataset changed, rebuilding model")
	switch err := s.engine.Build(buildCtx); {
	case err == nil:
		s.logger.Info().Dur("duration", time.Since(start)).Msg("Model rebuilt")
	case errors.Is(err, recommend.ErrBuildInProgress):
		s.logger.Debug().Msg("Rebuild skipped, build already in progress")
	case ctx.Err() != nil:
		// Shutting down.
	default:
		s.logger.Warn().Err(err).Msg("Rebuild failed, keeping previous snapshot")
	}
}

// String returns the service name for logging.
func (s *ReloadService) String() string {
	return s.name
}
