// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package algorithms implements the models behind the recommendation engine.
//
//   - CosineIndex: exact brute-force k-nearest-neighbor search over item rows
//     of the rating matrix, by cosine distance
//   - Leaderboard: items ranked by mean rating, with a strict vote floor and a
//     short-circuiting filter for genre restricted boards
//
// # Immutability
//
// A model is trained exactly once. Training a second time returns
// ErrAlreadyTrained; the engine builds a new model for every snapshot instead.
// Trained models are therefore safe for concurrent queries without locking.
package algorithms
