// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/cache"
	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend/algorithms"
	"github.com/tomtom215/animerec/internal/recommend/matrix"
)

// ErrNotFound is returned by title and id lookups that match nothing.
var ErrNotFound = errors.New("item not found")

// Engine owns the current model snapshot and answers queries against it.
// It is safe for concurrent use; queries never block on a build.
type Engine struct {
	config *Config
	source dataset.Source
	genres GenreLookup
	logger zerolog.Logger

	snapshot atomic.Pointer[Snapshot]
	version  atomic.Int64

	// buildMu serializes builds. building mirrors it for Status.
	buildMu  sync.Mutex
	building atomic.Bool

	errMu     sync.RWMutex
	lastError string

	cache *cache.LRU[[]Recommendation]
}

// NewEngine creates an engine reading from src. genres may be nil, in which
// case genre-filtered leaderboards are always empty.
func NewEngine(cfg *Config, src dataset.Source, genres GenreLookup) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg.Clone(),
		source: src,
		genres: genres,
		logger: logging.WithComponent("recommend"),
	}
	if cfg.Cache.MaxEntries > 0 {
		e.cache = cache.NewLRU[[]Recommendation]("recommendations", cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// Build loads the dataset from the source and publishes a new snapshot.
// On failure the previous snapshot, if any, stays active.
func (e *Engine) Build(ctx context.Context) error {
	if e.source == nil {
		return fmt.Errorf("build: %w", dataset.ErrDataUnavailable)
	}
	if !e.buildMu.TryLock() {
		return ErrBuildInProgress
	}
	defer e.buildMu.Unlock()
	e.building.Store(true)
	defer e.building.Store(false)

	ds, err := dataset.Load(ctx, e.source)
	if err != nil {
		e.setLastError(err)
		return fmt.Errorf("load dataset: %w", err)
	}
	return e.build(ctx, ds, e.source.Name())
}

// BuildFrom publishes a snapshot built from an already loaded dataset.
func (e *Engine) BuildFrom(ctx context.Context, ds *dataset.Dataset) error {
	if !e.buildMu.TryLock() {
		return ErrBuildInProgress
	}
	defer e.buildMu.Unlock()
	e.building.Store(true)
	defer e.building.Store(false)

	return e.build(ctx, ds, "memory")
}

// build must be called with buildMu held.
func (e *Engine) build(ctx context.Context, ds *dataset.Dataset, reader string) error {
	start := time.Now()

	m, err := matrix.Build(ds.Ratings(), ds, e.config.Matrix)
	if err != nil {
		e.setLastError(err)
		return fmt.Errorf("build matrix: %w", err)
	}

	idx := algorithms.NewCosineIndex(algorithms.CosineConfig{
		Workers:           e.config.Workers,
		ParallelThreshold: algorithms.DefaultCosineConfig().ParallelThreshold,
	})
	if err := idx.Train(ctx, m); err != nil {
		e.setLastError(err)
		return fmt.Errorf("train similarity index: %w", err)
	}

	lb := algorithms.NewLeaderboard()
	if err := lb.Train(ctx, ds.Ratings()); err != nil {
		e.setLastError(err)
		return fmt.Errorf("train leaderboard: %w", err)
	}

	snap := &Snapshot{
		Dataset:       ds,
		Matrix:        m,
		Index:         idx,
		Leaderboard:   lb,
		Version:       e.version.Add(1),
		BuiltAt:       time.Now(),
		BuildDuration: time.Since(start),
		reader:        reader,
	}
	e.snapshot.Store(snap)
	if e.cache != nil {
		e.cache.Purge()
	}
	e.setLastError(nil)

	metrics.ModelBuildDuration.Observe(snap.BuildDuration.Seconds())
	metrics.ModelVersion.Set(float64(snap.Version))
	metrics.RecordMatrixShape(m.Rows(), m.Cols(), m.NonZero())

	e.logger.Info().
		Int64("version", snap.Version).
		Int("items", m.Rows()).
		Int("users", m.Cols()).
		Int("nonzero", m.NonZero()).
		Int("rated_items", lb.Len()).
		Dur("duration", snap.BuildDuration).
		Msg("Model snapshot published")
	return nil
}

func (e *Engine) setLastError(err error) {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	if err == nil {
		e.lastError = ""
		return
	}
	e.lastError = err.Error()
}

// Snapshot returns the active snapshot, or nil before the first build.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Ready reports whether a snapshot has been published.
func (e *Engine) Ready() bool {
	return e.snapshot.Load() != nil
}

// SourceChanged reports whether the source files differ from those of the
// active snapshot. It is true before the first build.
func (e *Engine) SourceChanged() (bool, error) {
	if e.source == nil {
		return false, nil
	}
	fp, err := e.source.Fingerprint()
	if err != nil {
		return false, err
	}
	snap := e.snapshot.Load()
	if snap == nil {
		return true, nil
	}
	return !fp.Equal(snap.Dataset.Fingerprint()), nil
}

// Recommend returns up to n titles most similar to title, closest first.
// An unknown title yields an empty slice. n is clamped to [1, MaxN]; zero
// selects DefaultN.
func (e *Engine) Recommend(ctx context.Context, title string, n int) ([]Recommendation, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, ErrNotReady
	}
	n = e.clampN(n)

	key := strconv.FormatInt(snap.Version, 10) + "|" + strconv.Itoa(n) + "|" + title
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			metrics.RecommendRequests.WithLabelValues("cached").Inc()
			return slices.Clone(cached), nil
		}
	}

	row, ok := snap.Matrix.RowOf(title)
	if !ok {
		metrics.RecommendRequests.WithLabelValues("unknown_title").Inc()
		logging.Ctx(ctx).Debug().Str("title", title).Msg("Title not in rating matrix")
		return []Recommendation{}, nil
	}

	start := time.Now()
	neighbors, err := snap.Index.QueryRow(ctx, row, n+1)
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("query similar items: %w", err)
	}

	out := make([]Recommendation, 0, n)
	for _, nb := range neighbors {
		if nb.Row == row {
			continue
		}
		out = append(out, Recommendation{
			Title:  snap.Matrix.ItemName(nb.Row),
			ItemID: snap.Matrix.ItemID(nb.Row),
			Score:  1 - nb.Distance,
		})
		if len(out) == n {
			break
		}
	}

	if e.cache != nil {
		e.cache.Add(key, slices.Clone(out))
	}
	metrics.RecommendRequests.WithLabelValues("hit").Inc()
	return out, nil
}

func (e *Engine) clampN(n int) int {
	if n <= 0 {
		return e.config.Limits.DefaultN
	}
	return min(n, e.config.Limits.MaxN)
}

// TopRated returns the highest rated items with strictly more than MinVotes
// ratings, optionally restricted to items sharing a genre with req.Genres.
// Genres are looked up lazily in rank order and lookups stop once Limit items
// are found, so a filtered result is always a subsequence of the unfiltered one.
func (e *Engine) TopRated(ctx context.Context, req LeaderboardRequest) ([]LeaderboardEntry, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	minVotes := req.MinVotes
	if minVotes < 0 {
		minVotes = e.config.Leaderboard.MinVotes
	}
	limit := req.Limit
	if limit <= 0 {
		limit = e.config.Leaderboard.DefaultLimit
	}
	limit = min(limit, e.config.Leaderboard.MaxLimit)

	wanted := genreSet(req.Genres)
	filtered := len(wanted) > 0
	var accept algorithms.AcceptFunc
	if filtered {
		accept = func(ctx context.Context, s algorithms.RatingStat) (bool, error) {
			if e.genres == nil {
				return false, nil
			}
			metrics.LeaderboardGenreLookups.Inc()
			for _, g := range e.genres.Genres(ctx, s.ItemID) {
				if _, ok := wanted[normalizeGenre(g)]; ok {
					return true, nil
				}
			}
			return false, nil
		}
	}

	start := time.Now()
	stats, err := snap.Leaderboard.Top(ctx, minVotes, limit, accept)
	metrics.LeaderboardDuration.WithLabelValues(strconv.FormatBool(filtered)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	out := make([]LeaderboardEntry, 0, len(stats))
	for _, s := range stats {
		name, _ := snap.Dataset.ItemName(s.ItemID)
		out = append(out, LeaderboardEntry{
			ItemID:        s.ItemID,
			Title:         name,
			AverageRating: s.Mean,
			RatingCount:   s.Count,
		})
	}
	return out, nil
}

func genreSet(genres []string) map[string]struct{} {
	set := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		if g = normalizeGenre(g); g != "" {
			set[g] = struct{}{}
		}
	}
	return set
}

func normalizeGenre(g string) string {
	return strings.ToLower(strings.TrimSpace(g))
}

// ItemID maps a catalog title to its id.
func (e *Engine) ItemID(title string) (int, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return 0, ErrNotReady
	}
	id, ok := snap.Dataset.ItemID(title)
	if !ok {
		return 0, fmt.Errorf("title %q: %w", title, ErrNotFound)
	}
	return id, nil
}

// ItemName maps a catalog id to its title.
func (e *Engine) ItemName(id int) (string, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return "", ErrNotReady
	}
	name, ok := snap.Dataset.ItemName(id)
	if !ok {
		return "", fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return name, nil
}

// Titles lists the titles recommendations can be requested for, in ascending
// order. A non-empty q keeps titles containing it, ignoring case. limit <= 0
// returns every match.
func (e *Engine) Titles(q string, limit int) ([]string, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]string, 0, min(snap.Matrix.Rows(), 256))
	for i := range snap.Matrix.Rows() {
		name := snap.Matrix.ItemName(i)
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		out = append(out, name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Genres returns the selectable genre list.
func (e *Engine) Genres() []string {
	return slices.Clone(e.config.Leaderboard.Genres)
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Status reports readiness and the shape of the active snapshot.
func (e *Engine) Status() Status {
	e.errMu.RLock()
	lastError := e.lastError
	e.errMu.RUnlock()

	st := Status{
		Building:  e.building.Load(),
		LastError: lastError,
	}
	snap := e.snapshot.Load()
	if snap == nil {
		return st
	}

	builtAt := snap.BuiltAt
	st.Ready = true
	st.Version = snap.Version
	st.BuiltAt = &builtAt
	st.BuildDurationMS = snap.BuildDuration.Milliseconds()
	st.Reader = snap.reader
	st.Items = snap.Matrix.Rows()
	st.Users = snap.Matrix.Cols()
	st.NonZero = snap.Matrix.NonZero()
	st.RatedItems = snap.Leaderboard.Len()
	st.Load = snap.Dataset.Stats()
	if fp := snap.Dataset.Fingerprint(); fp.Catalog.Path != "" {
		st.Fingerprint = fp.String()
	}
	return st
}
