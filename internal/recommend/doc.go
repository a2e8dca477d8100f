// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package recommend answers "titles similar to X" and "top rated" queries
// over an anime rating dataset.
//
// # Architecture
//
// A build runs the pipeline
//
//	dataset.Load -> matrix.Build -> CosineIndex.Train
//	             \-> Leaderboard.Train
//
// and publishes the result as an immutable Snapshot through an atomic
// pointer. Queries load the pointer once and never lock, so a rebuild can
// run while requests are being served. Builds are serialized; a second
// concurrent Build returns ErrBuildInProgress.
//
// # Similarity
//
// Items are compared by the cosine distance of their rating rows across the
// most active users. Recommend asks the index for n+1 neighbors and drops
// the query row itself, so an item with an identical rating pattern can
// never displace or duplicate the query. Score is 1 - distance.
//
// # Leaderboard
//
// TopRated ranks items by mean rating, keeps those with strictly more than
// MinVotes ratings, and optionally filters by genre through a GenreLookup.
// Genre lookups can be slow (they go to an external service), so they are
// issued lazily in rank order and stop as soon as Limit items match.
//
// # Caching
//
// Recommendation results are held in an LRU keyed by snapshot version, n
// and title; a new snapshot purges it.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.FromAppConfig(cfg), src, metadataService)
//	if err != nil {
//	    return err
//	}
//	if err := engine.Build(ctx); err != nil {
//	    return err
//	}
//	recs, err := engine.Recommend(ctx, "Naruto", 10)
package recommend
