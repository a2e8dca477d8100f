// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metadata"
	"github.com/tomtom215/animerec/internal/recommend"
)

// DetailsProvider resolves presentation metadata for catalog items.
// metadata.Service is the production implementation.
type DetailsProvider interface {
	Details(ctx context.Context, itemID int) metadata.Details
}

// Handler serves the API endpoints.
type Handler struct {
	engine    *recommend.Engine
	details   DetailsProvider
	timeout   time.Duration
	startTime time.Time
}

// NewHandler creates a handler. details may be nil, in which case detail
// requests are answered with placeholders. timeout bounds each request;
// zero means 30s.
func NewHandler(engine *recommend.Engine, details DetailsProvider, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		engine:    engine,
		details:   details,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// detailsConcurrency caps in-flight metadata lookups per request. The
// metadata service throttles globally, so this only overlaps cache hits and
// network latency.
const detailsConcurrency = 4

// lookupDetails resolves details for ids, preserving order.
func (h *Handler) lookupDetails(ctx context.Context, ids []int) []metadata.Details {
	out := make([]metadata.Details, len(ids))
	if h.details == nil {
		for i, id := range ids {
			out[i] = metadata.Placeholder(id)
		}
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailsConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			out[i] = h.details.Details(gctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// writeEngineError maps engine errors onto API errors.
func writeEngineError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrNotReady):
		rw.ServiceUnavailable("Recommendation model is not loaded yet")
	case errors.Is(err, recommend.ErrNotFound):
		rw.NotFound(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		rw.ServiceUnavailable("Request timed out")
	case errors.Is(err, context.Canceled):
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Request cancelled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("API request failed")
		rw.InternalError("Internal server error")
	}
}

// writeParamError answers a request whose parameters failed to parse or validate.
func writeParamError(rw *ResponseWriter, err error) {
	rw.BadRequest(err.Error())
}

func (h *Handler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}
