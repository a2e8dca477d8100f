// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"fmt"

	"github.com/tomtom215/animerec/internal/validation"
)

// Validate checks field constraints, then rules spanning several fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if c.Recommend.DefaultResults > c.Recommend.MaxResults {
		return fmt.Errorf("recommend.default_results (%d) must not exceed recommend.max_results (%d)",
			c.Recommend.DefaultResults, c.Recommend.MaxResults)
	}
	if c.Leaderboard.DefaultLimit > c.Leaderboard.MaxLimit {
		return fmt.Errorf("leaderboard.default_limit (%d) must not exceed leaderboard.max_limit (%d)",
			c.Leaderboard.DefaultLimit, c.Leaderboard.MaxLimit)
	}
	if c.Metadata.Enabled && c.Metadata.BaseURL == "" {
		return fmt.Errorf("metadata.base_url is required when metadata.enabled=true")
	}
	if c.Metadata.TranslateTarget != "" && c.Metadata.TranslateURL == "" {
		return fmt.Errorf("metadata.translate_url is required when metadata.translate_target is set")
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
