// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestDuckDBSourceMatchesCSV(t *testing.T) {
	t.Parallel()

	csvSrc := newTestSource(t)
	duckSrc := &DuckDBSource{CatalogPath: csvSrc.CatalogPath, RatingsPath: csvSrc.RatingsPath}

	want, err := Load(context.Background(), csvSrc)
	if err != nil {
		t.Fatalf("csv Load: %v", err)
	}
	got, err := Load(context.Background(), duckSrc)
	if err != nil {
		t.Fatalf("duckdb Load: %v", err)
	}

	if len(got.Catalog()) != len(want.Catalog()) {
		t.Fatalf("catalog = %v, want %v", got.Catalog(), want.Catalog())
	}
	for i := range want.Catalog() {
		if got.Catalog()[i] != want.Catalog()[i] {
			t.Errorf("catalog[%d] = %v, want %v", i, got.Catalog()[i], want.Catalog()[i])
		}
	}
	if got.Stats() != want.Stats() {
		t.Errorf("stats = %+v, want %+v", got.Stats(), want.Stats())
	}
	if len(got.Ratings()) != len(want.Ratings()) {
		t.Fatalf("ratings = %v, want %v", got.Ratings(), want.Ratings())
	}
}

func TestDuckDBSourceMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := &DuckDBSource{
		CatalogPath: filepath.Join(dir, "anime.csv"),
		RatingsPath: filepath.Join(dir, "rating.csv"),
	}
	if _, err := Load(context.Background(), src); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestQuoting(t *testing.T) {
	t.Parallel()

	if got := quoteLiteral("it's.csv"); got != "'it''s.csv'" {
		t.Errorf("quoteLiteral = %s", got)
	}
	if got := quoteIdent(`a"b`); got != `"a""b"` {
		t.Errorf("quoteIdent = %s", got)
	}
}
