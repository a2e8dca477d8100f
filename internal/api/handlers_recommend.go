// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/animerec/internal/metadata"
	"github.com/tomtom215/animerec/internal/recommend"
)

// RecommendationItem is one recommended title, with details when requested.
type RecommendationItem struct {
	recommend.Recommendation
	Details *metadata.Details `json:"details,omitempty"`
}

// RecommendationsResponse is the payload of GET /recommendations.
type RecommendationsResponse struct {
	Title           string               `json:"title"`
	Recommendations []RecommendationItem `json:"recommendations"`
}

// LeaderboardItem is one leaderboard row, with details when requested.
type LeaderboardItem struct {
	recommend.LeaderboardEntry
	Details *metadata.Details `json:"details,omitempty"`
}

// LeaderboardResponse is the payload of GET /leaderboard.
type LeaderboardResponse struct {
	MinVotes int               `json:"min_votes"`
	Genres   []string          `json:"genres"`
	Entries  []LeaderboardItem `json:"entries"`
}

// ItemResponse is the payload of the item lookup endpoints.
type ItemResponse struct {
	ItemID  int               `json:"item_id"`
	Title   string            `json:"title"`
	Details *metadata.Details `json:"details,omitempty"`
}

// Recommendations handles GET /api/v1/recommendations.
// An unknown title answers 200 with an empty list.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params, err := parseRecommendationsParams(r)
	if err != nil {
		writeParamError(rw, err)
		return
	}
	if apiErr := validateRequest(&params); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Fields)
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	recs, err := h.engine.Recommend(ctx, params.Title, params.N)
	if err != nil {
		writeEngineError(rw, r, err)
		return
	}

	items := make([]RecommendationItem, len(recs))
	for i, rec := range recs {
		items[i] = RecommendationItem{Recommendation: rec}
	}
	if params.Details && len(recs) > 0 {
		ids := make([]int, len(recs))
		for i, rec := range recs {
			ids[i] = rec.ItemID
		}
		for i, d := range h.lookupDetails(ctx, ids) {
			items[i].Details = &d
		}
	}

	rw.SuccessWithCount(RecommendationsResponse{
		Title:           params.Title,
		Recommendations: items,
	}, len(items))
}

// Leaderboard handles GET /api/v1/leaderboard.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params, err := parseLeaderboardParams(r)
	if err != nil {
		writeParamError(rw, err)
		return
	}
	if apiErr := validateRequest(&params); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Fields)
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	entries, err := h.engine.TopRated(ctx, recommend.LeaderboardRequest{
		MinVotes: params.MinVotes,
		Limit:    params.Limit,
		Genres:   params.Genres,
	})
	if err != nil {
		writeEngineError(rw, r, err)
		return
	}

	items := make([]LeaderboardItem, len(entries))
	for i, e := range entries {
		items[i] = LeaderboardItem{LeaderboardEntry: e}
	}
	if params.Details && len(entries) > 0 {
		ids := make([]int, len(entries))
		for i, e := range entries {
			ids[i] = e.ItemID
		}
		for i, d := range h.lookupDetails(ctx, ids) {
			items[i].Details = &d
		}
	}

	minVotes := params.MinVotes
	if minVotes < 0 {
		minVotes = h.engine.Config().Leaderboard.MinVotes
	}
	genres := params.Genres
	if genres == nil {
		genres = []string{}
	}
	rw.SuccessWithCount(LeaderboardResponse{
		MinVotes: minVotes,
		Genres:   genres,
		Entries:  items,
	}, len(items))
}

// Titles handles GET /api/v1/titles.
func (h *Handler) Titles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params, err := parseTitlesParams(r)
	if err != nil {
		writeParamError(rw, err)
		return
	}
	if apiErr := validateRequest(&params); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Fields)
		return
	}

	titles, err := h.engine.Titles(params.Q, params.Limit)
	if err != nil {
		writeEngineError(rw, r, err)
		return
	}
	rw.SuccessWithCount(titles, len(titles))
}

// LookupItem handles GET /api/v1/items/lookup?title=.
func (h *Handler) LookupItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params := lookupParams{Title: r.URL.Query().Get("title")}
	if apiErr := validateRequest(&params); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Fields)
		return
	}

	id, err := h.engine.ItemID(params.Title)
	if err != nil {
		writeEngineError(rw, r, err)
		return
	}
	rw.Success(ItemResponse{ItemID: id, Title: params.Title})
}

// GetItem handles GET /api/v1/items/{itemID}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil || id <= 0 {
		rw.BadRequest("itemID must be a positive integer")
		return
	}
	withDetails, err := boolParam(r.URL.Query(), "details")
	if err != nil {
		writeParamError(rw, err)
		return
	}

	title, err := h.engine.ItemName(id)
	if err != nil {
		writeEngineError(rw, r, err)
		return
	}

	resp := ItemResponse{ItemID: id, Title: title}
	if withDetails {
		ctx, cancel := h.withTimeout(r)
		defer cancel()
		d := h.lookupDetails(ctx, []int{id})[0]
		resp.Details = &d
	}
	rw.Success(resp)
}

// Genres handles GET /api/v1/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	genres := h.engine.Genres()
	NewResponseWriter(w, r).SuccessWithCount(genres, len(genres))
}
