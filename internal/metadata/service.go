// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tomtom215/animerec/internal/cache"
	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metrics"
)

// Options configures a Service.
type Options struct {
	// Fetcher is the remote source. Nil disables remote lookups.
	Fetcher Fetcher

	// Translator translates synopses when TranslateTarget is set.
	Translator      Translator
	TranslateTarget string

	// Store is an optional persistent cache.
	Store Store

	// MinInterval is the minimum spacing between remote requests across all callers.
	MinInterval time.Duration

	// Timeout bounds one remote request. Time spent waiting on the throttle
	// is bounded only by the caller's context.
	Timeout time.Duration

	CacheSize int
	CacheTTL  time.Duration
}

// Service resolves item details through cache, store and the throttled remote.
// It is safe for concurrent use.
type Service struct {
	fetcher    Fetcher
	translator Translator
	target     string
	store      Store
	limiter    *rate.Limiter
	timeout    time.Duration
	cache      *cache.LRU[Details]
	group      singleflight.Group
	logger     zerolog.Logger
}

// NewService creates a Service from opts.
func NewService(opts Options) *Service {
	if opts.Translator == nil {
		opts.Translator = NoopTranslator{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Service{
		fetcher:    opts.Fetcher,
		translator: opts.Translator,
		target:     opts.TranslateTarget,
		store:      opts.Store,
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    opts.Timeout,
		cache:      cache.NewLRU[Details]("metadata", opts.CacheSize, opts.CacheTTL),
		logger:     logging.WithComponent("metadata"),
	}
}

// New builds the production Service from configuration: Jikan behind a
// circuit breaker, an optional badger store and an optional translator.
// The caller must Close the returned Service.
func New(cfg config.MetadataConfig) (*Service, error) {
	opts := Options{
		MinInterval: cfg.MinInterval,
		Timeout:     cfg.Timeout,
		CacheSize:   cfg.CacheSize,
		CacheTTL:    cfg.CacheTTL,
	}
	if !cfg.Enabled {
		return NewService(opts), nil
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	opts.Fetcher = NewCircuitBreakerFetcher("jikan-api", NewJikanClient(cfg.BaseURL, httpClient), DefaultBreakerConfig())

	if cfg.TranslateTarget != "" {
		opts.TranslateTarget = cfg.TranslateTarget
		opts.Translator = NewLibreTranslateClient(cfg.TranslateURL, "", httpClient)
	}

	if cfg.StorePath != "" {
		store, err := OpenBadgerStore(cfg.StorePath, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		opts.Store = store
	}
	return NewService(opts), nil
}

// Close releases the persistent store, if any.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Details returns the details of itemID. It never fails: when the remote
// cannot answer, Placeholder(itemID) is returned.
func (s *Service) Details(ctx context.Context, itemID int) Details {
	key := strconv.Itoa(itemID)
	if d, ok := s.cache.Get(key); ok {
		metrics.RecordMetadataLookup("memory", d.Placeholder)
		return cloneDetails(d)
	}

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		return s.resolve(ctx, itemID, key), nil
	})
	d, ok := v.(Details)
	if !ok {
		return Placeholder(itemID)
	}
	return cloneDetails(d)
}

// Genres returns the genres of itemID, empty when unknown.
func (s *Service) Genres(ctx context.Context, itemID int) []string {
	return s.Details(ctx, itemID).Genres
}

func (s *Service) resolve(ctx context.Context, itemID int, key string) Details {
	if s.store != nil {
		d, ok, err := s.store.Get(ctx, itemID)
		if err != nil {
			s.logger.Warn().Err(err).Int("item_id", itemID).Msg("Metadata store read failed")
		}
		if ok {
			s.cache.Add(key, d)
			metrics.RecordMetadataLookup("store", d.Placeholder)
			return d
		}
	}

	if s.fetcher == nil {
		metrics.RecordMetadataLookup("remote", true)
		return Placeholder(itemID)
	}

	d, err := s.fetch(ctx, itemID)
	switch {
	case errors.Is(err, ErrNotFound):
		d = Placeholder(itemID)
		s.remember(ctx, key, d)
	case err != nil:
		s.logger.Warn().Err(err).Int("item_id", itemID).Msg("Metadata fetch failed, using placeholder")
		metrics.RecordMetadataLookup("remote", true)
		return Placeholder(itemID)
	default:
		s.remember(ctx, key, d)
	}
	metrics.RecordMetadataLookup("remote", d.Placeholder)
	return d
}

func (s *Service) fetch(ctx context.Context, itemID int) (Details, error) {
	start := time.Now()
	defer func() { metrics.MetadataFetchDuration.Observe(time.Since(start).Seconds()) }()

	if err := s.limiter.Wait(ctx); err != nil {
		return Details{}, fmt.Errorf("metadata throttle: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	d, err := s.fetcher.Fetch(ctx, itemID)
	if err != nil {
		return Details{}, err
	}
	d.ItemID = itemID

	if s.target != "" && d.Synopsis != SynopsisUnavailable {
		translated, err := s.translator.Translate(ctx, d.Synopsis, s.target)
		if err != nil {
			s.logger.Debug().Err(err).Int("item_id", itemID).Str("target", s.target).Msg("Synopsis translation failed, keeping original")
		} else {
			d.Synopsis = translated
		}
	}
	return d, nil
}

func (s *Service) remember(ctx context.Context, key string, d Details) {
	s.cache.Add(key, d)
	if s.store == nil {
		return
	}
	if err := s.store.Put(ctx, d); err != nil {
		s.logger.Warn().Err(err).Int("item_id", d.ItemID).Msg("Metadata store write failed")
	}
}

func cloneDetails(d Details) Details {
	d.Genres = slices.Clone(d.Genres)
	if d.Genres == nil {
		d.Genres = []string{}
	}
	return d
}
