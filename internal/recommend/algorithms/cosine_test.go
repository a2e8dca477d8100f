// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/recommend/matrix"
)

type namer map[int]string

func (n namer) ItemName(id int) (string, bool) {
	s, ok := n[id]
	return s, ok
}

// buildMatrix pivots rows given as item -> ratings by user column 1..len(row).
func buildMatrix(t *testing.T, rows map[string][]float32) *matrix.Matrix {
	t.Helper()
	names := namer{}
	var ratings []dataset.Rating
	id := 0
	for name, vals := range rows {
		id++
		names[id] = name
		for u, v := range vals {
			if v != 0 {
				ratings = append(ratings, dataset.Rating{UserID: int32(u + 1), ItemID: int32(id), Value: v})
			}
		}
	}
	m, err := matrix.Build(ratings, names, matrix.Options{TopUsers: 1000, TopItems: 1000})
	if err != nil {
		t.Fatalf("matrix.Build: %v", err)
	}
	return m
}

func trainedIndex(t *testing.T, m *matrix.Matrix, cfg CosineConfig) *CosineIndex {
	t.Helper()
	idx := NewCosineIndex(cfg)
	if err := idx.Train(context.Background(), m); err != nil {
		t.Fatalf("Train: %v", err)
	}
	return idx
}

func TestCosineIndexQueryRow(t *testing.T) {
	t.Parallel()

	m := buildMatrix(t, map[string][]float32{
		"A": {5, 4},
		"B": {5, 4},
		"C": {1, 0},
	})
	idx := trainedIndex(t, m, DefaultCosineConfig())

	rowA, _ := m.RowOf("A")
	rowB, _ := m.RowOf("B")
	rowC, _ := m.RowOf("C")

	got, err := idx.QueryRow(context.Background(), rowA, 2)
	if err != nil {
		t.Fatalf("QueryRow: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Row != rowA || got[0].Distance != 0 {
		t.Errorf("first neighbor = %+v, want self at distance 0", got[0])
	}
	if got[1].Row != rowB || got[1].Distance > 1e-9 {
		t.Errorf("second neighbor = %+v, want B at ~0", got[1])
	}

	// B ties with A at distance 0; B itself must still come first.
	got, err = idx.QueryRow(context.Background(), rowB, 3)
	if err != nil {
		t.Fatalf("QueryRow: %v", err)
	}
	if got[0].Row != rowB || got[1].Row != rowA || got[2].Row != rowC {
		t.Errorf("order = %+v, want B, A, C", got)
	}

	// cos(A, C) = 5 / (sqrt(41) * 1)
	wantC := 1 - 5/math.Sqrt(41)
	if math.Abs(got[2].Distance-wantC) > 1e-6 {
		t.Errorf("distance to C = %v, want %v", got[2].Distance, wantC)
	}
}

func TestCosineIndexOrdering(t *testing.T) {
	t.Parallel()

	m := buildMatrix(t, map[string][]float32{
		"a": {1, 0, 0, 0},
		"b": {1, 1, 0, 0},
		"c": {0, 1, 0, 0},
		"d": {0, 0, 1, 1},
		"e": {1, 1, 1, 0},
	})
	idx := trainedIndex(t, m, DefaultCosineConfig())

	got, err := idx.Query(context.Background(), []float32{1, 0, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("k should clamp to rows, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Distance < prev.Distance || (cur.Distance == prev.Distance && cur.Row < prev.Row) {
			t.Errorf("results out of order at %d: %+v then %+v", i, prev, cur)
		}
	}
	for _, n := range got {
		if n.Distance < 0 || n.Distance > 2 {
			t.Errorf("distance %v outside [0, 2]", n.Distance)
		}
	}
	if m.ItemName(got[len(got)-1].Row) != "d" && m.ItemName(got[len(got)-1].Row) != "c" {
		t.Errorf("orthogonal rows should rank last, got %s", m.ItemName(got[len(got)-1].Row))
	}
}

func TestCosineIndexParallelMatchesSerial(t *testing.T) {
	t.Parallel()

	rows := map[string][]float32{}
	for i := 0; i < 300; i++ {
		vec := make([]float32, 12)
		for j := range vec {
			if (i*7+j*3)%5 != 0 {
				vec[j] = float32((i+j)%10 + 1)
			}
		}
		rows[string(rune('A'+i%26))+string(rune('a'+i/26))] = vec
	}
	m := buildMatrix(t, rows)

	serial := trainedIndex(t, m, CosineConfig{Workers: 1})
	parallel := trainedIndex(t, m, CosineConfig{Workers: 8, ParallelThreshold: 1})

	for _, r := range []int{0, 17, 150, m.Rows() - 1} {
		a, err := serial.QueryRow(context.Background(), r, 11)
		if err != nil {
			t.Fatal(err)
		}
		b, err := parallel.QueryRow(context.Background(), r, 11)
		if err != nil {
			t.Fatal(err)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("row %d: serial %+v != parallel %+v", r, a[i], b[i])
			}
		}
	}
}

func TestCosineIndexZeroVector(t *testing.T) {
	t.Parallel()

	m := buildMatrix(t, map[string][]float32{"A": {1, 2}, "B": {3, 0}})
	idx := trainedIndex(t, m, DefaultCosineConfig())

	got, err := idx.Query(context.Background(), []float32{0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range got {
		if n.Distance != 1 {
			t.Errorf("zero query distance = %v, want 1", n.Distance)
		}
	}
}

func TestCosineIndexErrors(t *testing.T) {
	t.Parallel()

	m := buildMatrix(t, map[string][]float32{"A": {1, 2}})
	idx := NewCosineIndex(DefaultCosineConfig())

	if _, err := idx.QueryRow(context.Background(), 0, 1); !errors.Is(err, ErrNotTrained) {
		t.Errorf("untrained query: %v", err)
	}
	if err := idx.Train(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	if err := idx.Train(context.Background(), m); !errors.Is(err, ErrAlreadyTrained) {
		t.Errorf("second Train: %v", err)
	}
	if _, err := idx.Query(context.Background(), []float32{1}, 1); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if _, err := idx.QueryRow(context.Background(), 5, 1); err == nil {
		t.Error("expected out of range error")
	}
	if got, err := idx.QueryRow(context.Background(), 0, 0); err != nil || len(got) != 0 {
		t.Errorf("k=0 = %v, %v", got, err)
	}
	if idx.TrainedAt().IsZero() || idx.Name() != "cosine" {
		t.Error("trained metadata not set")
	}
}

func TestCosineIndexTrainCancelled(t *testing.T) {
	t.Parallel()

	m := buildMatrix(t, map[string][]float32{"A": {1, 2}})
	idx := NewCosineIndex(DefaultCosineConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := idx.Train(ctx, m); !errors.Is(err, context.Canceled) {
		t.Fatalf("Train = %v, want context.Canceled", err)
	}
	if idx.IsTrained() {
		t.Error("cancelled Train should not mark the index trained")
	}
	if err := idx.Train(context.Background(), m); err != nil {
		t.Errorf("retry after cancelled Train: %v", err)
	}
}
