// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/recommend/algorithms"
	"github.com/tomtom215/animerec/internal/recommend/matrix"
)

var (
	// ErrNotReady is returned by queries issued before the first successful build.
	ErrNotReady = errors.New("recommendation engine not ready")

	// ErrBuildInProgress is returned when Build is called while another build runs.
	ErrBuildInProgress = errors.New("build already in progress")
)

// Recommendation is one item similar to the queried title.
type Recommendation struct {
	// Title is the catalog name of the recommended item.
	Title string `json:"title"`

	// ItemID is the catalog id of the recommended item.
	ItemID int `json:"item_id"`

	// Score is 1 - cosine distance. Identical rating vectors score 1.
	Score float64 `json:"score"`
}

// LeaderboardEntry is one row of the rating leaderboard.
type LeaderboardEntry struct {
	ItemID        int     `json:"item_id"`
	Title         string  `json:"title"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
}

// LeaderboardRequest selects a slice of the leaderboard.
type LeaderboardRequest struct {
	// MinVotes keeps items with strictly more ratings. Negative uses the configured default.
	MinVotes int

	// Limit caps the result size. Zero uses the configured default.
	Limit int

	// Genres restricts results to items carrying at least one of these genres.
	// Matching is case-insensitive. Empty means no filter.
	Genres []string
}

// GenreLookup resolves the genres of a catalog item. Implementations must not
// fail: an unknown item simply has no genres.
type GenreLookup interface {
	Genres(ctx context.Context, itemID int) []string
}

// Snapshot is one immutable build of the model. Queries read it without locking.
type Snapshot struct {
	Dataset     *dataset.Dataset
	Matrix      *matrix.Matrix
	Index       *algorithms.CosineIndex
	Leaderboard *algorithms.Leaderboard

	// Version increments with every successful build.
	Version int64

	BuiltAt       time.Time
	BuildDuration time.Duration

	reader string
}

// Status reports the state of the engine.
type Status struct {
	Ready           bool              `json:"ready"`
	Building        bool              `json:"building"`
	Version         int64             `json:"version"`
	BuiltAt         *time.Time        `json:"built_at,omitempty"`
	BuildDurationMS int64             `json:"build_duration_ms"`
	Reader          string            `json:"reader"`
	Items           int               `json:"items"`
	Users           int               `json:"users"`
	NonZero         int               `json:"nonzero"`
	RatedItems      int               `json:"rated_items"`
	Load            dataset.LoadStats `json:"load"`
	Fingerprint     string            `json:"fingerprint,omitempty"`
	LastError       string            `json:"last_error,omitempty"`
}
