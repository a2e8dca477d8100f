// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/animerec/config.yaml",
	"/etc/animerec/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			CatalogPath:    "data/anime.csv",
			RatingsPath:    "data/rating.csv",
			Reader:         "csv",
			ReloadInterval: 0,
		},
		Matrix: MatrixConfig{
			TopUsers:        5500,
			TopItems:        5000,
			DuplicatePolicy: "mean",
		},
		Recommend: RecommendConfig{
			DefaultResults: 10,
			MaxResults:     50,
			Workers:        0, // 0 = runtime.NumCPU()
			CacheSize:      1024,
			CacheTTL:       10 * time.Minute,
		},
		Leaderboard: LeaderboardConfig{
			MinVotes:     10,
			DefaultLimit: 10,
			MaxLimit:     100,
			Genres:       append([]string(nil), DefaultGenres...),
		},
		Metadata: MetadataConfig{
			Enabled:     true,
			BaseURL:     "https://api.jikan.moe/v4",
			MinInterval: 300 * time.Millisecond,
			Timeout:     10 * time.Second,
			CacheSize:   5000,
			CacheTTL:    24 * time.Hour,
			StorePath:   "",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from three layers, later layers winning:
//  1. Built-in defaults
//  2. Optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as a single string.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"leaderboard.genres",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"catalog_path":            "dataset.catalog_path",
	"ratings_path":            "dataset.ratings_path",
	"dataset_reader":          "dataset.reader",
	"dataset_reload_interval": "dataset.reload_interval",

	"matrix_top_users":        "matrix.top_users",
	"matrix_top_items":        "matrix.top_items",
	"matrix_duplicate_policy": "matrix.duplicate_policy",

	"recommend_default_results": "recommend.default_results",
	"recommend_max_results":     "recommend.max_results",
	"recommend_workers":         "recommend.workers",
	"recommend_cache_size":      "recommend.cache_size",
	"recommend_cache_ttl":       "recommend.cache_ttl",

	"leaderboard_min_votes":     "leaderboard.min_votes",
	"leaderboard_default_limit": "leaderboard.default_limit",
	"leaderboard_max_limit":     "leaderboard.max_limit",
	"leaderboard_genres":        "leaderboard.genres",

	"metadata_enabled":          "metadata.enabled",
	"metadata_base_url":         "metadata.base_url",
	"metadata_min_interval":     "metadata.min_interval",
	"metadata_timeout":          "metadata.timeout",
	"metadata_cache_size":       "metadata.cache_size",
	"metadata_cache_ttl":        "metadata.cache_ttl",
	"metadata_store_path":       "metadata.store_path",
	"metadata_translate_target": "metadata.translate_target",
	"metadata_translate_url":    "metadata.translate_url",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to config paths.
// Unmapped variables are dropped so unrelated environment does not leak in.
//
//	MATRIX_TOP_USERS -> matrix.top_users
//	HTTP_PORT        -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
