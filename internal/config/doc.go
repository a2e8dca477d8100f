// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package config loads animerec configuration with koanf.

Sources are layered, later ones overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file, taken from CONFIG_PATH or the first of DefaultConfigPaths that exists
 3. Environment variables, mapped explicitly (see envMappings)

# Environment Variables

Dataset:
  - CATALOG_PATH: item catalog CSV (default: data/anime.csv)
  - RATINGS_PATH: rating log CSV (default: data/rating.csv)
  - DATASET_READER: csv or duckdb (default: csv)
  - DATASET_RELOAD_INTERVAL: poll interval for source changes (default: 0, disabled)

Matrix:
  - MATRIX_TOP_USERS: most active users kept (default: 5500)
  - MATRIX_TOP_ITEMS: most rated items kept (default: 5000)
  - MATRIX_DUPLICATE_POLICY: mean or last (default: mean)

Leaderboard:
  - LEADERBOARD_MIN_VOTES: strict vote floor (default: 10)
  - LEADERBOARD_GENRES: comma-separated selectable genres

Metadata:
  - METADATA_ENABLED, METADATA_BASE_URL, METADATA_MIN_INTERVAL (default: 300ms),
    METADATA_TIMEOUT (default: 10s), METADATA_STORE_PATH, METADATA_TRANSLATE_TARGET

Server and logging:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Validation runs after unmarshaling. Field constraints are declared as
validator tags on the config structs; cross-field rules live in Validate.
*/
package config
