// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package supervisor runs the long-lived Animerec services under suture v4.

# Overview

	RootSupervisor ("animerec")
	├── ModelSupervisor ("model-layer")
	│   └── ReloadService (when dataset.reload_interval > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog, whose slog logger writes into zerolog via
logging.NewSlogLogger, so they share the application log format.

# Usage

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

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped with error")
	}

See the services subpackage for the individual service wrappers.
*/
package supervisor
