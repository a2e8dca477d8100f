// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package services provides suture.Service wrappers for Animerec components.

Each wrapper translates a component lifecycle into suture's
Serve(ctx context.Context) error and implements fmt.Stringer so supervisor
events name the service.

# Available Services

HTTP Server (HTTPServerService):
  - Runs *http.Server.ListenAndServe until the context is canceled
  - Drains in-flight requests for the shutdown timeout, then closes
  - http.ErrServerClosed is treated as a clean stop

Dataset Reload (ReloadService):
  - Polls recommend.Engine.SourceChanged on an interval
  - Rebuilds the snapshot when the rating or catalog file changes
  - Failed rebuilds are logged; the previous snapshot keeps serving
  - Idles when the interval is zero

# Usage

	server := &http.Server{
	    Addr:              cfg.Server.Addr(),
	    Handler:           router.Setup(),
	    ReadHeaderTimeout: 10 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddModelService(services.NewReloadService(engine, services.ReloadServiceConfig{
	    Interval: cfg.Dataset.ReloadInterval,
	}))
*/
package services
