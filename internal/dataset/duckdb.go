// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver
)

// DuckDBSource reads both tables through an in-memory DuckDB instance.
// Every column is read as VARCHAR so cleaning stays identical to CSVSource.
type DuckDBSource struct {
	CatalogPath string
	RatingsPath string
}

// Name implements Source.
func (s *DuckDBSource) Name() string { return "duckdb" }

// Fingerprint implements Source.
func (s *DuckDBSource) Fingerprint() (Fingerprint, error) {
	return statFiles(s.CatalogPath, s.RatingsPath)
}

// Scan implements Source.
func (s *DuckDBSource) Scan(ctx context.Context, table Table, columns []string, fn RowFunc) error {
	path := s.CatalogPath
	if table == RatingsTable {
		path = s.RatingsPath
	}
	if _, err := stat(path); err != nil {
		return err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("%w: open duckdb: %w", ErrDataUnavailable, err)
	}
	defer db.Close()

	relation := fmt.Sprintf("read_csv(%s, header = true, all_varchar = true)", quoteLiteral(path))

	header, err := describe(ctx, db, relation)
	if err != nil {
		return fmt.Errorf("%w: describe %s: %w", ErrDataUnavailable, table, err)
	}
	idx, err := columnIndexes(header, columns)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDataUnavailable, table, err)
	}

	selects := make([]string, len(idx))
	for i, p := range idx {
		selects[i] = fmt.Sprintf("COALESCE(%s, '')", quoteIdent(header[p]))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), relation)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: query %s: %w", ErrDataUnavailable, table, err)
	}
	defer rows.Close()

	cells := make([]string, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("%w: scan %s: %w", ErrDataUnavailable, table, err)
		}
		if err := fn(cells); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterate %s: %w", ErrDataUnavailable, table, err)
	}
	return nil
}

// describe returns the column names DuckDB infers for relation.
func describe(ctx context.Context, db *sql.DB, relation string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+relation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var names []string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		names = append(names, vals[0].String) // column_name
	}
	return names, rows.Err()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
