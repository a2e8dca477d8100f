// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/animerec/internal/recommend/matrix"
)

// CosineConfig configures the similarity index.
type CosineConfig struct {
	// Workers is the number of goroutines scoring rows per query.
	// Zero means runtime.NumCPU().
	Workers int

	// ParallelThreshold is the row count below which queries run on the calling goroutine.
	ParallelThreshold int
}

// DefaultCosineConfig returns the default index configuration.
func DefaultCosineConfig() CosineConfig {
	return CosineConfig{
		Workers:           0,
		ParallelThreshold: 2048,
	}
}

// Neighbor is one query result.
type Neighbor struct {
	Row      int
	Distance float64
}

// CosineIndex answers exact k-nearest-neighbor queries over matrix rows.
//
// Rows are held in compressed sparse row form: the ratings of row r are
// data[indptr[r]:indptr[r+1]] at columns indices[indptr[r]:indptr[r+1]].
// Absent cells count as zero in the dot product, never as missing.
//
// distance(a, b) = 1 - a·b / (|a| |b|), clipped to [0, 2]. A zero vector is
// at distance 1 from everything.
type CosineIndex struct {
	BaseAlgorithm
	config CosineConfig

	rows    int
	cols    int
	indptr  []int
	indices []int32
	data    []float32
	norms   []float64
}

// NewCosineIndex creates an untrained index.
func NewCosineIndex(cfg CosineConfig) *CosineIndex {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = DefaultCosineConfig().ParallelThreshold
	}
	return &CosineIndex{
		BaseAlgorithm: BaseAlgorithm{name: "cosine"},
		config:        cfg,
	}
}

// Train copies m into sparse form and precomputes row norms.
// The index keeps no reference to m.
func (c *CosineIndex) Train(ctx context.Context, m *matrix.Matrix) error {
	if err := c.beginTraining(); err != nil {
		return err
	}

	rows, cols := m.Rows(), m.Cols()
	indptr := make([]int, rows+1)
	indices := make([]int32, 0, m.NonZero())
	data := make([]float32, 0, m.NonZero())
	norms := make([]float64, rows)

	for r := 0; r < rows; r++ {
		if r%256 == 0 && ContextCancelled(ctx) {
			c.abortTraining()
			return ctx.Err()
		}
		var sq float64
		for j, v := range m.Row(r) {
			if v == 0 {
				continue
			}
			indices = append(indices, int32(j))
			data = append(data, v)
			sq += float64(v) * float64(v)
		}
		indptr[r+1] = len(data)
		norms[r] = math.Sqrt(sq)
	}

	c.rows, c.cols = rows, cols
	c.indptr, c.indices, c.data, c.norms = indptr, indices, data, norms
	c.markTrained()
	return nil
}

// Rows returns the number of indexed rows.
func (c *CosineIndex) Rows() int { return c.rows }

// Cols returns the vector dimension.
func (c *CosineIndex) Cols() int { return c.cols }

// Vector returns a dense copy of row r.
func (c *CosineIndex) Vector(r int) ([]float32, error) {
	if !c.IsTrained() {
		return nil, ErrNotTrained
	}
	if r < 0 || r >= c.rows {
		return nil, fmt.Errorf("row %d out of range [0, %d)", r, c.rows)
	}
	vec := make([]float32, c.cols)
	for p := c.indptr[r]; p < c.indptr[r+1]; p++ {
		vec[c.indices[p]] = c.data[p]
	}
	return vec, nil
}

// Query returns the k rows nearest to vec, by ascending distance, ties by ascending row.
func (c *CosineIndex) Query(ctx context.Context, vec []float32, k int) ([]Neighbor, error) {
	return c.query(ctx, vec, k, -1)
}

// QueryRow returns the k rows nearest to row r. Row r itself is always first, at distance 0,
// so asking for n other items means k = n+1.
func (c *CosineIndex) QueryRow(ctx context.Context, r, k int) ([]Neighbor, error) {
	vec, err := c.Vector(r)
	if err != nil {
		return nil, err
	}
	return c.query(ctx, vec, k, r)
}

func (c *CosineIndex) query(ctx context.Context, vec []float32, k, self int) ([]Neighbor, error) {
	if !c.IsTrained() {
		return nil, ErrNotTrained
	}
	if len(vec) != c.cols {
		return nil, fmt.Errorf("query vector has %d dimensions, index has %d", len(vec), c.cols)
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}
	k = min(k, c.rows)

	var qsq float64
	for _, v := range vec {
		qsq += float64(v) * float64(v)
	}
	qnorm := math.Sqrt(qsq)

	dist := make([]float64, c.rows)
	if err := c.score(ctx, vec, qnorm, dist); err != nil {
		return nil, err
	}
	if self >= 0 {
		dist[self] = 0
	}

	order := make([]int, c.rows)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if d := cmp.Compare(dist[a], dist[b]); d != 0 {
			return d
		}
		// the query row wins ties so it is always reported first
		if a == self {
			return -1
		}
		if b == self {
			return 1
		}
		return cmp.Compare(a, b)
	})

	out := make([]Neighbor, k)
	for i := 0; i < k; i++ {
		out[i] = Neighbor{Row: order[i], Distance: dist[order[i]]}
	}
	return out, nil
}

// score fills dist for every row, fanning out across workers for large indexes.
func (c *CosineIndex) score(ctx context.Context, vec []float32, qnorm float64, dist []float64) error {
	workers := c.config.Workers
	if c.rows < c.config.ParallelThreshold || workers <= 1 {
		c.scoreRange(vec, qnorm, dist, 0, c.rows)
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (c.rows + workers - 1) / workers
	for start := 0; start < c.rows; start += chunk {
		end := min(start+chunk, c.rows)
		g.Go(func() error {
			if ContextCancelled(gctx) {
				return gctx.Err()
			}
			c.scoreRange(vec, qnorm, dist, start, end)
			return nil
		})
	}
	return g.Wait()
}

func (c *CosineIndex) scoreRange(vec []float32, qnorm float64, dist []float64, start, end int) {
	for r := start; r < end; r++ {
		rnorm := c.norms[r]
		if qnorm == 0 || rnorm == 0 {
			dist[r] = 1
			continue
		}
		var dot float64
		for p := c.indptr[r]; p < c.indptr[r+1]; p++ {
			dot += float64(c.data[p]) * float64(vec[c.indices[p]])
		}
		d := 1 - dot/(qnorm*rnorm)
		dist[r] = math.Min(math.Max(d, 0), 2)
	}
}
