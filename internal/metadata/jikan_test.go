// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

const fullAnimeJSON = `{"data":{
  "mal_id":1,
  "images":{"jpg":{"image_url":"https://cdn.example/1.jpg"}},
  "synopsis":"Space cowboys.",
  "genres":[{"mal_id":1,"name":"Action"},{"mal_id":24,"name":"Sci-Fi"}],
  "type":"TV",
  "episodes":26,
  "year":1998
}}`

const sparseAnimeJSON = `{"data":{
  "images":{"jpg":{}},
  "synopsis":null,
  "genres":[],
  "type":null,
  "episodes":null,
  "year":null
}}`

func TestJikanClientFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v4/anime/1":
			_, _ = w.Write([]byte(fullAnimeJSON))
		case "/v4/anime/2":
			_, _ = w.Write([]byte(sparseAnimeJSON))
		case "/v4/anime/3":
			_, _ = w.Write([]byte(`{"data":null}`))
		case "/v4/anime/5":
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"status":429}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewJikanClient(srv.URL+"/v4/", srv.Client())

	t.Run("full record", func(t *testing.T) {
		d, err := client.Fetch(context.Background(), 1)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		want := Details{
			ItemID: 1, ImageURL: "https://cdn.example/1.jpg", Synopsis: "Space cowboys.",
			Genres: []string{"Action", "Sci-Fi"}, MediaType: "TV", Episodes: "26", Year: "1998",
		}
		if d.ItemID != want.ItemID || d.ImageURL != want.ImageURL || d.Synopsis != want.Synopsis ||
			!slices.Equal(d.Genres, want.Genres) || d.MediaType != want.MediaType ||
			d.Episodes != want.Episodes || d.Year != want.Year || d.Placeholder {
			t.Errorf("Fetch(1) = %+v, want %+v", d, want)
		}
		if d.GenresText() != "Action, Sci-Fi" {
			t.Errorf("GenresText = %q", d.GenresText())
		}
	})

	t.Run("null fields use fallbacks", func(t *testing.T) {
		d, err := client.Fetch(context.Background(), 2)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if d.Synopsis != SynopsisUnavailable || d.MediaType != "-" || d.Episodes != "?" || d.Year != "-" || d.ImageURL != "" {
			t.Errorf("Fetch(2) = %+v", d)
		}
		if d.GenresText() != "-" {
			t.Errorf("GenresText = %q, want -", d.GenresText())
		}
	})

	t.Run("null data is not found", func(t *testing.T) {
		if _, err := client.Fetch(context.Background(), 3); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("404 is not found", func(t *testing.T) {
		if _, err := client.Fetch(context.Background(), 4); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("other status is an error", func(t *testing.T) {
		_, err := client.Fetch(context.Background(), 5)
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want non-not-found error", err)
		}
	})
}

func TestLibreTranslateClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req translateRequest
		if err := decodeJSON(r, &req); err != nil || req.Source != "auto" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad request"}`))
			return
		}
		if req.Target == "xx" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"xx is not supported"}`))
			return
		}
		_, _ = w.Write([]byte(`{"translatedText":"[` + req.Target + `] ` + req.Q + `"}`))
	}))
	defer srv.Close()

	tr := NewLibreTranslateClient(srv.URL, "", srv.Client())

	got, err := tr.Translate(context.Background(), "hello", "id")
	if err != nil || got != "[id] hello" {
		t.Errorf("Translate = %q, %v", got, err)
	}
	if _, err := tr.Translate(context.Background(), "hello", "xx"); err == nil {
		t.Error("expected error for unsupported target")
	}
}

func TestPlaceholder(t *testing.T) {
	t.Parallel()
	d := Placeholder(7)
	if !d.Placeholder || d.ItemID != 7 || d.ImageURL != "" || d.Synopsis != "Synopsis unavailable." ||
		d.MediaType != "-" || d.Episodes != "?" || d.Year != "-" || d.GenresText() != "-" || d.Genres == nil {
		t.Errorf("Placeholder(7) = %+v", d)
	}
}
