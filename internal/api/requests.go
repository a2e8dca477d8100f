// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/animerec/internal/validation"
)

// recommendationsParams are the query parameters of GET /recommendations.
type recommendationsParams struct {
	Title   string `query:"title" validate:"required,max=512"`
	N       int    `query:"n" validate:"min=0,max=500"`
	Details bool   `query:"details"`
}

// leaderboardParams are the query parameters of GET /leaderboard.
// MinVotes is -1 when absent, selecting the configured default.
type leaderboardParams struct {
	Genres   []string `query:"genres" validate:"max=20,dive,max=64"`
	Limit    int      `query:"limit" validate:"min=0,max=1000"`
	MinVotes int      `query:"min_votes" validate:"min=-1"`
	Details  bool     `query:"details"`
}

// titlesParams are the query parameters of GET /titles.
type titlesParams struct {
	Q     string `query:"q" validate:"max=256"`
	Limit int    `query:"limit" validate:"min=0,max=20000"`
}

// lookupParams are the query parameters of GET /items/lookup.
type lookupParams struct {
	Title string `query:"title" validate:"required,max=512"`
}

// paramError is a query parameter that could not be parsed.
type paramError struct {
	name  string
	value string
	kind  string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be %s, got %q", e.name, e.kind, e.value)
}

// intParam parses an integer query parameter, returning def when absent.
func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw, kind: "an integer"}
	}
	return v, nil
}

// boolParam parses a boolean query parameter, returning false when absent.
func boolParam(q url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &paramError{name: name, value: raw, kind: "a boolean"}
	}
	return v, nil
}

// listParam collects a list parameter given either repeated (?g=a&g=b) or
// comma separated (?g=a,b). Blank entries are dropped.
func listParam(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseRecommendationsParams(r *http.Request) (recommendationsParams, error) {
	q := r.URL.Query()
	p := recommendationsParams{Title: strings.TrimSpace(q.Get("title"))}
	var err error
	if p.N, err = intParam(q, "n", 0); err != nil {
		return p, err
	}
	if p.Details, err = boolParam(q, "details"); err != nil {
		return p, err
	}
	return p, nil
}

func parseLeaderboardParams(r *http.Request) (leaderboardParams, error) {
	q := r.URL.Query()
	p := leaderboardParams{Genres: listParam(q, "genres")}
	var err error
	if p.Limit, err = intParam(q, "limit", 0); err != nil {
		return p, err
	}
	if p.MinVotes, err = intParam(q, "min_votes", -1); err != nil {
		return p, err
	}
	if p.Details, err = boolParam(q, "details"); err != nil {
		return p, err
	}
	return p, nil
}

func parseTitlesParams(r *http.Request) (titlesParams, error) {
	q := r.URL.Query()
	p := titlesParams{Q: q.Get("q")}
	var err error
	p.Limit, err = intParam(q, "limit", 0)
	return p, err
}

// validateRequest validates a params struct, returning nil when it passes.
func validateRequest(v interface{}) *validation.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}
