// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package logging provides the zerolog-based structured logger used across animerec.
//
// A single global logger is configured once at startup from the logging
// section of the application config:
//
//	logging.Init(logging.Config{
//	    Level:  cfg.Logging.Level,
//	    Format: cfg.Logging.Format,
//	    Caller: cfg.Logging.Caller,
//	})
//
// Components derive child loggers carrying a component field:
//
//	logger := logging.WithComponent("recommend")
//	logger.Info().Int("items", n).Msg("Similarity index trained")
//
// HTTP handlers log through the request context so every line carries the
// request id assigned by the API middleware:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Metadata lookup degraded")
//
// # Supervisor Integration
//
// The suture supervisor tree logs through log/slog. NewSlogLogger returns an
// *slog.Logger whose handler forwards records to the global zerolog logger,
// so supervisor events share the same output and format.
//
// # Output Formats
//
//   - json: one JSON object per line (default)
//   - console: human readable, for local development
package logging
