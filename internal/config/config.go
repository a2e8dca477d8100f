// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Dataset     DatasetConfig     `koanf:"dataset"`
	Matrix      MatrixConfig      `koanf:"matrix"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	Leaderboard LeaderboardConfig `koanf:"leaderboard"`
	Metadata    MetadataConfig    `koanf:"metadata"`
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// DatasetConfig locates the catalog and rating sources.
type DatasetConfig struct {
	// CatalogPath is the item catalog CSV (anime_id, name, ...).
	CatalogPath string `koanf:"catalog_path" validate:"required"`

	// RatingsPath is the rating log CSV (user_id, anime_id, rating).
	RatingsPath string `koanf:"ratings_path" validate:"required"`

	// Reader selects the loader: "csv" streams with encoding/csv, "duckdb" uses read_csv.
	Reader string `koanf:"reader" validate:"oneof=csv duckdb"`

	// ReloadInterval polls the sources and rebuilds when they change. Zero disables reloads.
	ReloadInterval time.Duration `koanf:"reload_interval" validate:"min=0"`
}

// MatrixConfig bounds the rating matrix.
type MatrixConfig struct {
	TopUsers        int    `koanf:"top_users" validate:"min=1,max=1000000"`
	TopItems        int    `koanf:"top_items" validate:"min=1,max=100000"`
	DuplicatePolicy string `koanf:"duplicate_policy" validate:"oneof=mean last"`
}

// RecommendConfig tunes similarity queries.
type RecommendConfig struct {
	DefaultResults int           `koanf:"default_results" validate:"min=1"`
	MaxResults     int           `koanf:"max_results" validate:"min=1,max=500"`
	Workers        int           `koanf:"workers" validate:"min=0,max=256"`
	CacheSize      int           `koanf:"cache_size" validate:"min=0"`
	CacheTTL       time.Duration `koanf:"cache_ttl" validate:"min=0"`
}

// LeaderboardConfig tunes the rating leaderboard.
type LeaderboardConfig struct {
	// MinVotes keeps items with strictly more ratings than this.
	MinVotes     int      `koanf:"min_votes" validate:"min=0"`
	DefaultLimit int      `koanf:"default_limit" validate:"min=1"`
	MaxLimit     int      `koanf:"max_limit" validate:"min=1,max=1000"`
	Genres       []string `koanf:"genres"`
}

// MetadataConfig configures the external metadata collaborator.
type MetadataConfig struct {
	Enabled     bool          `koanf:"enabled"`
	BaseURL     string        `koanf:"base_url" validate:"omitempty,url"`
	MinInterval time.Duration `koanf:"min_interval" validate:"min=0"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`

	// CacheSize bounds the in-memory lookup cache.
	CacheSize int           `koanf:"cache_size" validate:"min=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"min=0"`

	// StorePath enables the persistent badger cache when non-empty.
	StorePath string `koanf:"store_path"`

	// TranslateTarget is the language code synopses are translated into. Empty disables translation.
	TranslateTarget string `koanf:"translate_target"`

	// TranslateURL is a LibreTranslate-compatible endpoint used when TranslateTarget is set.
	TranslateURL string `koanf:"translate_url" validate:"omitempty,url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=0"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DefaultGenres is the selectable genre list offered to clients.
var DefaultGenres = []string{
	"Action", "Adventure", "Comedy", "Drama", "Fantasy", "Horror", "Mystery",
	"Romance", "Sci-Fi", "Slice of Life", "Supernatural", "Sports", "Thriller",
}
