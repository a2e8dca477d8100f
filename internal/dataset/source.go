// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table names one of the two tabular inputs.
type Table string

const (
	CatalogTable Table = "catalog"
	RatingsTable Table = "ratings"
)

// Columns required from each table, in the order Scan delivers them.
var (
	catalogColumns = []string{"anime_id", "name"}
	ratingColumns  = []string{"user_id", "anime_id", "rating"}
)

// RowFunc receives the requested cells of one row. A nil cell pointer is never
// passed; empty strings stand for missing values. The slice is reused between calls.
type RowFunc func(cells []string) error

// Source yields raw rows of the catalog and rating tables.
type Source interface {
	// Name identifies the reader in logs and metrics.
	Name() string

	// Scan calls fn once per data row of table with the cells of columns, in order.
	Scan(ctx context.Context, table Table, columns []string, fn RowFunc) error

	// Fingerprint identifies the current version of the underlying files.
	Fingerprint() (Fingerprint, error)
}

// NewSource returns the Source for reader ("csv" or "duckdb").
func NewSource(reader, catalogPath, ratingsPath string) (Source, error) {
	switch reader {
	case "", "csv":
		return &CSVSource{CatalogPath: catalogPath, RatingsPath: ratingsPath}, nil
	case "duckdb":
		return &DuckDBSource{CatalogPath: catalogPath, RatingsPath: ratingsPath}, nil
	default:
		return nil, fmt.Errorf("unknown dataset reader %q", reader)
	}
}

// NormalizeColumn trims and lower-cases a header name.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

// columnIndexes maps each wanted column to its position in header.
func columnIndexes(header, columns []string) ([]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		n := NormalizeColumn(h)
		if _, seen := positions[n]; !seen {
			positions[n] = i
		}
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		p, ok := positions[c]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
		idx[i] = p
	}
	return idx, nil
}

// CSVSource reads both tables from local CSV files with encoding/csv.
type CSVSource struct {
	CatalogPath string
	RatingsPath string
}

// Name implements Source.
func (s *CSVSource) Name() string { return "csv" }

// Fingerprint implements Source.
func (s *CSVSource) Fingerprint() (Fingerprint, error) {
	return statFiles(s.CatalogPath, s.RatingsPath)
}

func (s *CSVSource) path(table Table) string {
	if table == CatalogTable {
		return s.CatalogPath
	}
	return s.RatingsPath
}

// Scan implements Source.
func (s *CSVSource) Scan(ctx context.Context, table Table, columns []string, fn RowFunc) error {
	path := s.path(table)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrDataUnavailable, table, err)
	}
	defer f.Close()

	if err := scanCSV(ctx, f, columns, fn); err != nil {
		return fmt.Errorf("read %s (%s): %w", table, path, err)
	}
	return nil
}

func scanCSV(ctx context.Context, r io.Reader, columns []string, fn RowFunc) error {
	cr := csv.NewReader(bufio.NewReaderSize(r, 1<<20))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("%w: header: %w", ErrDataUnavailable, err)
	}
	idx, err := columnIndexes(header, columns)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	cells := make([]string, len(columns))
	for line := 2; ; line++ {
		if line%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrDataUnavailable, line, err)
		}

		for i, p := range idx {
			if p < len(rec) {
				cells[i] = rec[p]
			} else {
				cells[i] = ""
			}
		}
		if err := fn(cells); err != nil {
			return err
		}
	}
}
