// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/leaderboard", "200"))
	RecordAPIRequest("GET", "/api/v1/leaderboard", "200", 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/leaderboard", "200"))

	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestRecordDatasetLoadCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(DatasetLoadErrors)

	RecordDatasetLoad("csv", time.Second, nil)
	RecordDatasetLoad("csv", time.Second, errors.New("missing column"))

	if got := testutil.ToFloat64(DatasetLoadErrors) - before; got != 1 {
		t.Errorf("expected 1 load error, got %v", got)
	}
}

func TestRecordMatrixShape(t *testing.T) {
	RecordMatrixShape(3, 2, 5)

	tests := map[string]float64{"items": 3, "users": 2, "nonzero": 5}
	for axis, want := range tests {
		if got := testutil.ToFloat64(MatrixDimensions.WithLabelValues(axis)); got != want {
			t.Errorf("%s = %v, want %v", axis, got, want)
		}
	}
}

func TestRecordMetadataLookup(t *testing.T) {
	before := testutil.ToFloat64(MetadataLookups.WithLabelValues("remote", "placeholder"))
	RecordMetadataLookup("remote", true)
	if got := testutil.ToFloat64(MetadataLookups.WithLabelValues("remote", "placeholder")) - before; got != 1 {
		t.Errorf("expected placeholder counter +1, got %v", got)
	}
}
