// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/recommend/matrix"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Matrix bounds the item-by-user rating matrix.
	Matrix matrix.Options `json:"matrix"`

	// Limits contains query limits.
	Limits LimitsConfig `json:"limits"`

	// Leaderboard contains leaderboard defaults.
	Leaderboard LeaderboardConfig `json:"leaderboard"`

	// Cache contains recommendation caching parameters.
	Cache CacheConfig `json:"cache"`

	// Workers is the number of goroutines scoring a similarity query.
	// Zero means runtime.NumCPU().
	Workers int `json:"workers"`
}

// LimitsConfig contains query limits.
type LimitsConfig struct {
	// DefaultN is the number of recommendations returned when none is requested.
	DefaultN int `json:"default_n"`

	// MaxN caps the number of recommendations per request.
	MaxN int `json:"max_n"`
}

// LeaderboardConfig contains leaderboard defaults.
type LeaderboardConfig struct {
	MinVotes     int      `json:"min_votes"`
	DefaultLimit int      `json:"default_limit"`
	MaxLimit     int      `json:"max_limit"`
	Genres       []string `json:"genres"`
}

// CacheConfig configures the recommendation cache.
type CacheConfig struct {
	// MaxEntries is the cache capacity. Zero disables caching.
	MaxEntries int           `json:"max_entries"`
	TTL        time.Duration `json:"ttl"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Matrix: matrix.Options{
			TopUsers: 5500,
			TopItems: 5000,
			Policy:   matrix.PolicyMean,
		},
		Limits: LimitsConfig{
			DefaultN: 10,
			MaxN:     50,
		},
		Leaderboard: LeaderboardConfig{
			MinVotes:     10,
			DefaultLimit: 10,
			MaxLimit:     100,
			Genres:       slices.Clone(config.DefaultGenres),
		},
		Cache: CacheConfig{
			MaxEntries: 1024,
			TTL:        10 * time.Minute,
		},
	}
}

// FromAppConfig maps the application configuration onto the engine configuration.
func FromAppConfig(cfg *config.Config) *Config {
	return &Config{
		Matrix: matrix.Options{
			TopUsers: cfg.Matrix.TopUsers,
			TopItems: cfg.Matrix.TopItems,
			Policy:   matrix.DuplicatePolicy(cfg.Matrix.DuplicatePolicy),
		},
		Limits: LimitsConfig{
			DefaultN: cfg.Recommend.DefaultResults,
			MaxN:     cfg.Recommend.MaxResults,
		},
		Leaderboard: LeaderboardConfig{
			MinVotes:     cfg.Leaderboard.MinVotes,
			DefaultLimit: cfg.Leaderboard.DefaultLimit,
			MaxLimit:     cfg.Leaderboard.MaxLimit,
			Genres:       slices.Clone(cfg.Leaderboard.Genres),
		},
		Cache: CacheConfig{
			MaxEntries: cfg.Recommend.CacheSize,
			TTL:        cfg.Recommend.CacheTTL,
		},
		Workers: cfg.Recommend.Workers,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Matrix.TopUsers < 1 {
		return fmt.Errorf("matrix.top_users must be positive, got %d", c.Matrix.TopUsers)
	}
	if c.Matrix.TopItems < 1 {
		return fmt.Errorf("matrix.top_items must be positive, got %d", c.Matrix.TopItems)
	}
	switch c.Matrix.Policy {
	case matrix.PolicyMean, matrix.PolicyLast:
	default:
		return fmt.Errorf("matrix.duplicate_policy must be mean or last, got %q", c.Matrix.Policy)
	}

	if c.Limits.DefaultN < 1 {
		return fmt.Errorf("limits.default_n must be positive, got %d", c.Limits.DefaultN)
	}
	if c.Limits.MaxN < c.Limits.DefaultN {
		return fmt.Errorf("limits.max_n must be >= limits.default_n, got %d < %d", c.Limits.MaxN, c.Limits.DefaultN)
	}

	if c.Leaderboard.MinVotes < 0 {
		return fmt.Errorf("leaderboard.min_votes must be non-negative, got %d", c.Leaderboard.MinVotes)
	}
	if c.Leaderboard.DefaultLimit < 1 {
		return fmt.Errorf("leaderboard.default_limit must be positive, got %d", c.Leaderboard.DefaultLimit)
	}
	if c.Leaderboard.MaxLimit < c.Leaderboard.DefaultLimit {
		return fmt.Errorf("leaderboard.max_limit must be >= leaderboard.default_limit, got %d < %d",
			c.Leaderboard.MaxLimit, c.Leaderboard.DefaultLimit)
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be non-negative, got %d", c.Cache.MaxEntries)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Leaderboard.Genres = slices.Clone(c.Leaderboard.Genres)
	return &out
}
