// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metadata

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// fakeFetcher answers from a fixed table and records every call.
type fakeFetcher struct {
	mu      sync.Mutex
	details map[int]Details
	errs    map[int]error
	calls   []int
	times   []time.Time
	delay   time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, itemID int) (Details, error) {
	f.mu.Lock()
	f.calls = append(f.calls, itemID)
	f.times = append(f.times, time.Now())
	delay := f.delay
	d, ok := f.details[itemID]
	err := f.errs[itemID]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Details{}, ctx.Err()
		}
	}
	if err != nil {
		return Details{}, err
	}
	if !ok {
		return Details{}, ErrNotFound
	}
	return d, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type prefixTranslator struct {
	err error
}

func (p prefixTranslator) Translate(_ context.Context, text, target string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return target + ":" + text, nil
}
