// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
jikan.go - Jikan v4 REST API Client

Jikan is an unofficial read-only MyAnimeList API. Item ids in the rating
dataset are MyAnimeList ids, so GET /anime/{id} resolves them directly.

API Reference: https://docs.api.jikan.moe/
*/

package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Ensure JikanClient implements Fetcher
var _ Fetcher = (*JikanClient)(nil)

// JikanClient fetches item details from the Jikan API.
type JikanClient struct {
	baseURL    string
	httpClient *http.Client
}

// jikanResponse is the subset of GET /anime/{id} this client reads.
// Nullable fields are pointers so null can be told apart from zero.
type jikanResponse struct {
	Data *struct {
		Images struct {
			JPG struct {
				ImageURL string `json:"image_url"`
			} `json:"jpg"`
		} `json:"images"`
		Synopsis *string `json:"synopsis"`
		Genres   []struct {
			Name string `json:"name"`
		} `json:"genres"`
		Type     *string `json:"type"`
		Episodes *int    `json:"episodes"`
		Year     *int    `json:"year"`
	} `json:"data"`
}

// NewJikanClient creates a client for the API at baseURL
// (e.g. https://api.jikan.moe/v4). A nil httpClient uses one with a 30s timeout.
func NewJikanClient(baseURL string, httpClient *http.Client) *JikanClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &JikanClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Fetch implements Fetcher.
func (c *JikanClient) Fetch(ctx context.Context, itemID int) (Details, error) {
	endpoint := c.baseURL + "/anime/" + strconv.Itoa(itemID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return Details{}, fmt.Errorf("create jikan request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Details{}, fmt.Errorf("jikan request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return Details{}, fmt.Errorf("anime %d: %w", itemID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Details{}, fmt.Errorf("jikan returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload jikanResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Details{}, fmt.Errorf("decode jikan response: %w", err)
	}
	if payload.Data == nil {
		return Details{}, fmt.Errorf("anime %d: %w", itemID, ErrNotFound)
	}

	data := payload.Data
	d := Details{
		ItemID:    itemID,
		ImageURL:  data.Images.JPG.ImageURL,
		Synopsis:  SynopsisUnavailable,
		Genres:    make([]string, 0, len(data.Genres)),
		MediaType: UnknownText,
		Episodes:  UnknownEpisodes,
		Year:      UnknownText,
	}
	if data.Synopsis != nil && strings.TrimSpace(*data.Synopsis) != "" {
		d.Synopsis = *data.Synopsis
	}
	for _, g := range data.Genres {
		if g.Name != "" {
			d.Genres = append(d.Genres, g.Name)
		}
	}
	if data.Type != nil && *data.Type != "" {
		d.MediaType = *data.Type
	}
	if data.Episodes != nil {
		d.Episodes = strconv.Itoa(*data.Episodes)
	}
	if data.Year != nil {
		d.Year = strconv.Itoa(*data.Year)
	}
	return d, nil
}
