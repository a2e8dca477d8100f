// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package main is the entry point for the Animerec server.

Animerec serves item-to-item anime recommendations and a rating leaderboard
computed from a catalog CSV and a user rating CSV.

# Startup

 1. Configuration: koanf v2 (defaults, optional config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Dataset source: encoding/csv or DuckDB read_csv
 4. Metadata service: Jikan client behind a circuit breaker, LRU and badger caches
 5. Model build: synchronous; startup fails if the dataset cannot be loaded
 6. Supervisor tree: reload service and HTTP server under suture v4

# Configuration

	CATALOG_PATH=data/anime.csv
	RATINGS_PATH=data/rating.csv
	DATASET_READER=csv              # csv or duckdb
	DATASET_RELOAD_INTERVAL=0       # e.g. 5m to rebuild when the files change
	METADATA_ENABLED=true
	METADATA_STORE_PATH=            # badger directory for persistent details
	HTTP_PORT=8080
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. The HTTP server drains
in-flight requests for server.shutdown_timeout before closing connections.
*/
package main
