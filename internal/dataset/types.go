// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrDataUnavailable reports that a source could not be opened or parsed.
var ErrDataUnavailable = errors.New("dataset unavailable")

// ErrMissingColumn reports a required column absent from a source header.
var ErrMissingColumn = errors.New("missing required column")

// Rating is one positive (user, item, rating) triple.
// Fields are 32-bit because the full log holds millions of rows.
type Rating struct {
	UserID int32
	ItemID int32
	Value  float32
}

// CatalogEntry maps an item id to its display name.
type CatalogEntry struct {
	ID   int
	Name string
}

// LoadStats counts rows seen and dropped during a load.
type LoadStats struct {
	CatalogRows       int `json:"catalog_rows"`
	CatalogDropped    int `json:"catalog_dropped"`
	CatalogDuplicates int `json:"catalog_duplicates"`
	RatingRows        int `json:"rating_rows"`
	RatingsDropped    int `json:"ratings_dropped"`
	UnmatchedRatings  int `json:"unmatched_ratings"`
}

// FileStamp identifies one version of a source file.
type FileStamp struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Fingerprint identifies one version of both sources.
type Fingerprint struct {
	Catalog FileStamp
	Ratings FileStamp
}

// Equal reports whether two fingerprints describe the same source versions.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Catalog.Path == other.Catalog.Path &&
		f.Catalog.Size == other.Catalog.Size &&
		f.Catalog.ModTime.Equal(other.Catalog.ModTime) &&
		f.Ratings.Path == other.Ratings.Path &&
		f.Ratings.Size == other.Ratings.Size &&
		f.Ratings.ModTime.Equal(other.Ratings.ModTime)
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%s@%d:%d,%s@%d:%d",
		f.Catalog.Path, f.Catalog.Size, f.Catalog.ModTime.Unix(),
		f.Ratings.Path, f.Ratings.Size, f.Ratings.ModTime.Unix())
}

func stat(path string) (FileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileStamp{}, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return FileStamp{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func statFiles(catalogPath, ratingsPath string) (Fingerprint, error) {
	c, err := stat(catalogPath)
	if err != nil {
		return Fingerprint{}, err
	}
	r, err := stat(ratingsPath)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{Catalog: c, Ratings: r}, nil
}
