// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/metrics"
)

// Dataset is the cleaned, joined catalog and rating log. It is immutable after Load.
type Dataset struct {
	catalog     []CatalogEntry
	byID        map[int]int
	byName      map[string]int
	ratings     []Rating
	stats       LoadStats
	fingerprint Fingerprint
	loadedAt    time.Time
}

// New assembles a Dataset from already clean values, applying the same
// dedup and join rules as Load. Useful for tests and embedding callers.
func New(catalog []CatalogEntry, ratings []Rating) *Dataset {
	ds := newDataset(len(catalog))
	for _, e := range catalog {
		ds.addEntry(e)
	}
	for _, r := range ratings {
		ds.addRating(r)
	}
	ds.loadedAt = time.Now()
	return ds
}

func newDataset(capacity int) *Dataset {
	return &Dataset{
		catalog: make([]CatalogEntry, 0, capacity),
		byID:    make(map[int]int, capacity),
		byName:  make(map[string]int, capacity),
	}
}

func (d *Dataset) addEntry(e CatalogEntry) {
	d.stats.CatalogRows++
	if e.Name == "" {
		d.stats.CatalogDropped++
		return
	}
	if _, dup := d.byName[e.Name]; dup {
		d.stats.CatalogDuplicates++
		return
	}
	if _, dup := d.byID[e.ID]; dup {
		d.stats.CatalogDuplicates++
		return
	}
	d.byID[e.ID] = len(d.catalog)
	d.byName[e.Name] = len(d.catalog)
	d.catalog = append(d.catalog, e)
}

func (d *Dataset) addRating(r Rating) {
	d.stats.RatingRows++
	if !(r.Value > 0) {
		d.stats.RatingsDropped++
		return
	}
	if _, ok := d.byID[int(r.ItemID)]; !ok {
		d.stats.UnmatchedRatings++
		return
	}
	d.ratings = append(d.ratings, r)
}

// Catalog returns the deduplicated catalog in source order.
func (d *Dataset) Catalog() []CatalogEntry { return d.catalog }

// Ratings returns the positive, catalog-joined ratings in source order.
func (d *Dataset) Ratings() []Rating { return d.ratings }

// Stats returns the row counts of the load.
func (d *Dataset) Stats() LoadStats { return d.stats }

// Fingerprint returns the source version this dataset was loaded from.
func (d *Dataset) Fingerprint() Fingerprint { return d.fingerprint }

// LoadedAt returns when the dataset was loaded.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// ItemName returns the catalog name for id.
func (d *Dataset) ItemName(id int) (string, bool) {
	i, ok := d.byID[id]
	if !ok {
		return "", false
	}
	return d.catalog[i].Name, true
}

// ItemID returns the catalog id for name.
func (d *Dataset) ItemID(name string) (int, bool) {
	i, ok := d.byName[name]
	if !ok {
		return 0, false
	}
	return d.catalog[i].ID, true
}

// Load reads, cleans, and joins both tables from src.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	logger := logging.WithComponent("dataset")
	start := time.Now()

	ds, err := load(ctx, src)
	metrics.RecordDatasetLoad(src.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s := ds.stats
	metrics.DatasetRows.WithLabelValues("catalog", "kept").Set(float64(len(ds.catalog)))
	metrics.DatasetRows.WithLabelValues("catalog", "dropped").Set(float64(s.CatalogDropped + s.CatalogDuplicates))
	metrics.DatasetRows.WithLabelValues("ratings", "kept").Set(float64(len(ds.ratings)))
	metrics.DatasetRows.WithLabelValues("ratings", "dropped").Set(float64(s.RatingsDropped))
	metrics.DatasetRows.WithLabelValues("ratings", "unmatched").Set(float64(s.UnmatchedRatings))

	logger.Info().
		Str("reader", src.Name()).
		Int("catalog", len(ds.catalog)).
		Int("catalog_dropped", s.CatalogDropped).
		Int("catalog_duplicates", s.CatalogDuplicates).
		Int("ratings", len(ds.ratings)).
		Int("ratings_dropped", s.RatingsDropped).
		Int("unmatched_ratings", s.UnmatchedRatings).
		Dur("duration", time.Since(start)).
		Msg("Dataset loaded")

	return ds, nil
}

func load(ctx context.Context, src Source) (*Dataset, error) {
	fp, err := src.Fingerprint()
	if err != nil {
		return nil, err
	}

	ds := newDataset(16384)
	ds.fingerprint = fp

	err = src.Scan(ctx, CatalogTable, catalogColumns, func(cells []string) error {
		id, ok := parseID(cells[0])
		if !ok {
			ds.stats.CatalogRows++
			ds.stats.CatalogDropped++
			return nil
		}
		ds.addEntry(CatalogEntry{ID: id, Name: cells[1]})
		return nil
	})
	if err != nil {
		return nil, wrapUnavailable(err)
	}

	ds.ratings = make([]Rating, 0, 1<<20)
	err = src.Scan(ctx, RatingsTable, ratingColumns, func(cells []string) error {
		user, okUser := parseID(cells[0])
		item, okItem := parseID(cells[1])
		value, okValue := parseRating(cells[2])
		if !okUser || !okItem || !okValue || user > math.MaxInt32 || item > math.MaxInt32 {
			ds.stats.RatingRows++
			ds.stats.RatingsDropped++
			return nil
		}
		ds.addRating(Rating{UserID: int32(user), ItemID: int32(item), Value: value})
		return nil
	})
	if err != nil {
		return nil, wrapUnavailable(err)
	}

	ds.loadedAt = time.Now()
	return ds, nil
}

// wrapUnavailable makes every load failure match ErrDataUnavailable,
// including context cancellation mid-read.
func wrapUnavailable(err error) error {
	if errors.Is(err, ErrDataUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
}

// parseID accepts integers, including the "123.0" form spreadsheets export.
func parseID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func parseRating(s string) (float32, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return float32(f), true
}
