// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metadata

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metrics"
)

// Ensure CircuitBreakerFetcher implements Fetcher
var _ Fetcher = (*CircuitBreakerFetcher)(nil)

// BreakerConfig tunes the circuit breaker.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval resets failure counts while closed.
	Interval time.Duration
	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration
	// MinRequests is the sample size needed before the circuit may open.
	MinRequests uint32
	// FailureRatio opens the circuit once reached.
	FailureRatio float64
}

// DefaultBreakerConfig returns the breaker settings used for the metadata API.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// CircuitBreakerFetcher wraps a Fetcher with a circuit breaker so a failing
// remote is skipped instead of costing every lookup the full timeout.
// A not-found answer is a successful call and never trips the breaker.
type CircuitBreakerFetcher struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker[Details]
	name string
}

// NewCircuitBreakerFetcher wraps next. name labels logs and metrics.
func NewCircuitBreakerFetcher(name string, next Fetcher, cfg BreakerConfig) *CircuitBreakerFetcher {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[Details](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerFetcher{next: next, cb: cb, name: name}
}

// Fetch implements Fetcher.
func (f *CircuitBreakerFetcher) Fetch(ctx context.Context, itemID int) (Details, error) {
	d, err := f.cb.Execute(func() (Details, error) {
		return f.next.Fetch(ctx, itemID)
	})
	switch {
	case err == nil || errors.Is(err, ErrNotFound):
		metrics.CircuitBreakerRequests.WithLabelValues(f.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(f.name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(f.name, "failure").Inc()
	}
	return d, err
}

// State returns the current breaker state as "closed", "half-open" or "open".
func (f *CircuitBreakerFetcher) State() string {
	return stateToString(f.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
