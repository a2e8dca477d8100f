// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package dataset loads the item catalog and the rating log.

Two tabular inputs are read through a Source:

  - catalog: anime_id, name (other columns ignored)
  - ratings: user_id, anime_id, rating

Header names are matched after trimming whitespace and lower-casing, so
" Anime_ID" and "anime_id" are the same column.

Cleaning rules applied by Load:

  - catalog rows with a missing or non-numeric id, or an empty name, are dropped
  - catalog names are deduplicated keeping the first occurrence; a repeated id also keeps the first
  - ratings <= 0 are dropped (the log uses -1 for "watched, not rated")
  - ratings whose anime_id has no catalog entry are dropped (inner join)

Dropped and unmatched rows are counted in LoadStats. Any failure to open or
parse a source is returned wrapped in ErrDataUnavailable; the server treats
that as fatal at startup.

Two Source implementations exist. CSVSource streams the files with
encoding/csv. DuckDBSource lets DuckDB's read_csv do the parsing, which is
noticeably faster on the full rating log.
*/
package dataset
