// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status  string  `json:"status"`
	Ready   bool    `json:"ready"`
	Version int64   `json:"model_version"`
	Uptime  float64 `json:"uptime_seconds"`
}

// HealthLive handles GET /api/v1/health/live. It succeeds while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status: "alive",
		Ready:  h.engine.Ready(),
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /api/v1/health/ready. It answers 503 until the
// first model snapshot is published.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	st := h.engine.Status()
	if !st.Ready {
		rw.ServiceUnavailable("Recommendation model is not loaded yet")
		return
	}
	rw.Success(HealthStatus{
		Status:  "ready",
		Ready:   true,
		Version: st.Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Status())
}
