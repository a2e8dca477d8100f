// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metadata

import (
	"context"
	"errors"
	"strings"
)

// Placeholder values shown when details cannot be fetched.
const (
	SynopsisUnavailable = "Synopsis unavailable."
	UnknownText         = "-"
	UnknownEpisodes     = "?"
)

// ErrNotFound is returned by a Fetcher when the remote has no entry for the id.
var ErrNotFound = errors.New("metadata not found")

// Details is the presentation data of one catalog item.
type Details struct {
	ItemID    int      `json:"item_id"`
	ImageURL  string   `json:"image_url"`
	Synopsis  string   `json:"synopsis"`
	Genres    []string `json:"genres"`
	MediaType string   `json:"media_type"`
	Episodes  string   `json:"episodes"`
	Year      string   `json:"year"`

	// Placeholder is set when the fields are fallbacks rather than fetched data.
	Placeholder bool `json:"placeholder"`
}

// Placeholder returns the details shown when a lookup fails.
func Placeholder(itemID int) Details {
	return Details{
		ItemID:      itemID,
		ImageURL:    "",
		Synopsis:    SynopsisUnavailable,
		Genres:      []string{},
		MediaType:   UnknownText,
		Episodes:    UnknownEpisodes,
		Year:        UnknownText,
		Placeholder: true,
	}
}

// GenresText joins the genres for display, or returns "-" when there are none.
func (d Details) GenresText() string {
	if len(d.Genres) == 0 {
		return UnknownText
	}
	return strings.Join(d.Genres, ", ")
}

// Fetcher retrieves details for one item from a remote source.
type Fetcher interface {
	Fetch(ctx context.Context, itemID int) (Details, error)
}

// Translator translates a synopsis into the target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// NoopTranslator returns text unchanged.
type NoopTranslator struct{}

// Translate implements Translator.
func (NoopTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// Store persists details across restarts.
type Store interface {
	Get(ctx context.Context, itemID int) (Details, bool, error)
	Put(ctx context.Context, d Details) error
	Close() error
}
