// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package metadata enriches catalog items with presentation details (cover
// image, synopsis, genres, media type, episode count, year) fetched from an
// external anime database.
//
// The remote service is slow and rate limited, so every lookup goes through
// Service, which layers:
//
//   - an in-memory LRU and an optional badger store, checked first
//   - singleflight, so concurrent lookups of one item issue one request
//   - a shared minimum-interval throttle (golang.org/x/time/rate)
//   - a per-call timeout
//   - a circuit breaker around the HTTP client (sony/gobreaker)
//
// Lookups never fail. Any error yields Placeholder, which renders as
// "Synopsis unavailable." with "-" and "?" in the remaining fields.
// Placeholders for transient failures are not cached; an item the remote
// reports as missing is.
//
// Service also implements recommend.GenreLookup for the genre-filtered
// leaderboard.
package metadata
