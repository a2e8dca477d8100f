// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package api exposes the recommendation engine over HTTP using the Chi router.
//
// # Endpoints
//
//	GET /api/v1/health/live                  process is up
//	GET /api/v1/health/ready                 a model snapshot is loaded (503 otherwise)
//	GET /api/v1/status                       snapshot and build status
//	GET /api/v1/titles?q=&limit=             titles recommendations can be requested for
//	GET /api/v1/items/lookup?title=          title to catalog id
//	GET /api/v1/items/{itemID}?details=      catalog id to title, optionally with metadata
//	GET /api/v1/recommendations?title=&n=&details=
//	GET /api/v1/leaderboard?genres=&limit=&min_votes=&details=
//	GET /api/v1/genres                       selectable genre list
//	GET /metrics                             Prometheus metrics
//
// # Response Format
//
// Every JSON endpoint answers with the same envelope:
//
//	{
//	  "success": true,
//	  "data": {...},
//	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3, "count": 10}
//	}
//
// Errors set success=false and carry {"code", "message"} in "error".
// Codes: BAD_REQUEST, VALIDATION_FAILED, NOT_FOUND, METHOD_NOT_ALLOWED,
// TOO_MANY_REQUESTS, SERVICE_UNAVAILABLE, INTERNAL_ERROR.
//
// An unknown title is not an error: /recommendations answers 200 with an
// empty list and meta.count 0.
package api
