// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package matrix pivots the rating log into the item-by-user matrix the
// similarity index is trained on.
//
// Only the most active users and the most rated items are kept. Counts are
// ranked descending; equal counts keep the order in which the user or item
// first appears in the log, so a build is a pure function of its input.
//
// Rows are item names in ascending order and columns user ids in ascending
// order. Cells are float32 ratings with 0 meaning "not rated". Every row and
// column holds at least one rating because labels are collected from the
// filtered ratings rather than from the kept sets.
package matrix

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/tomtom215/animerec/internal/dataset"
)

// DuplicatePolicy resolves several ratings for the same (user, item) pair.
type DuplicatePolicy string

const (
	// PolicyMean stores the arithmetic mean of the duplicate ratings.
	PolicyMean DuplicatePolicy = "mean"
	// PolicyLast stores the rating that appears last in the log.
	PolicyLast DuplicatePolicy = "last"
)

// ErrEmpty is returned when no rating survives the filters.
var ErrEmpty = errors.New("rating matrix is empty")

// Options bound the matrix.
type Options struct {
	TopUsers int
	TopItems int
	Policy   DuplicatePolicy
}

// Namer resolves item ids to display names.
type Namer interface {
	ItemName(id int) (string, bool)
}

// Matrix is a dense item-by-user rating table. It is immutable once built.
type Matrix struct {
	items     []string
	itemIDs   []int
	users     []int
	values    []float32
	rowByName map[string]int
	nonzero   int
}

// Rows returns the number of items.
func (m *Matrix) Rows() int { return len(m.items) }

// Cols returns the number of users.
func (m *Matrix) Cols() int { return len(m.users) }

// NonZero returns the number of rated cells.
func (m *Matrix) NonZero() int { return m.nonzero }

// Row returns the ratings of item row i. The slice aliases the matrix and must not be modified.
func (m *Matrix) Row(i int) []float32 {
	c := len(m.users)
	return m.values[i*c : (i+1)*c : (i+1)*c]
}

// At returns the rating of item row i by user column j.
func (m *Matrix) At(i, j int) float32 { return m.values[i*len(m.users)+j] }

// ItemName returns the name labeling row i.
func (m *Matrix) ItemName(i int) string { return m.items[i] }

// ItemID returns the catalog id of row i.
func (m *Matrix) ItemID(i int) int { return m.itemIDs[i] }

// UserID returns the user labeling column j.
func (m *Matrix) UserID(j int) int { return m.users[j] }

// RowOf returns the row of the item called name.
func (m *Matrix) RowOf(name string) (int, bool) {
	i, ok := m.rowByName[name]
	return i, ok
}

// Items returns a copy of the row labels.
func (m *Matrix) Items() []string { return slices.Clone(m.items) }

// Users returns a copy of the column labels.
func (m *Matrix) Users() []int { return slices.Clone(m.users) }

// Equal reports whether both matrices have the same labels and cells.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	return slices.Equal(m.items, o.items) &&
		slices.Equal(m.itemIDs, o.itemIDs) &&
		slices.Equal(m.users, o.users) &&
		slices.Equal(m.values, o.values)
}

// rankByCount returns ids ordered by count descending, ties by first appearance.
func rankByCount(firstSeen []int32, counts map[int32]int) []int32 {
	ranked := slices.Clone(firstSeen)
	sort.SliceStable(ranked, func(a, b int) bool {
		return counts[ranked[a]] > counts[ranked[b]]
	})
	return ranked
}

func topSet(ranked []int32, n int) map[int32]struct{} {
	if n > len(ranked) {
		n = len(ranked)
	}
	set := make(map[int32]struct{}, n)
	for _, id := range ranked[:n] {
		set[id] = struct{}{}
	}
	return set
}

// Build pivots ratings into a Matrix restricted to opts.TopUsers users and opts.TopItems items.
func Build(ratings []dataset.Rating, names Namer, opts Options) (*Matrix, error) {
	if opts.TopUsers <= 0 || opts.TopItems <= 0 {
		return nil, fmt.Errorf("top users and top items must be positive, got %d and %d", opts.TopUsers, opts.TopItems)
	}
	switch opts.Policy {
	case "":
		opts.Policy = PolicyMean
	case PolicyMean, PolicyLast:
	default:
		return nil, fmt.Errorf("unknown duplicate policy %q", opts.Policy)
	}

	userCounts := make(map[int32]int)
	itemCounts := make(map[int32]int)
	var userOrder, itemOrder []int32
	for _, r := range ratings {
		if userCounts[r.UserID] == 0 {
			userOrder = append(userOrder, r.UserID)
		}
		userCounts[r.UserID]++
		if itemCounts[r.ItemID] == 0 {
			itemOrder = append(itemOrder, r.ItemID)
		}
		itemCounts[r.ItemID]++
	}

	keepUsers := topSet(rankByCount(userOrder, userCounts), opts.TopUsers)
	keepItems := topSet(rankByCount(itemOrder, itemCounts), opts.TopItems)

	// Labels come from ratings in the intersection only.
	presentUsers := make(map[int32]struct{})
	presentItems := make(map[int32]struct{})
	for _, r := range ratings {
		if _, ok := keepUsers[r.UserID]; !ok {
			continue
		}
		if _, ok := keepItems[r.ItemID]; !ok {
			continue
		}
		presentUsers[r.UserID] = struct{}{}
		presentItems[r.ItemID] = struct{}{}
	}
	if len(presentItems) == 0 {
		return nil, ErrEmpty
	}

	m := &Matrix{
		users:     make([]int, 0, len(presentUsers)),
		items:     make([]string, 0, len(presentItems)),
		itemIDs:   make([]int, 0, len(presentItems)),
		rowByName: make(map[string]int, len(presentItems)),
	}

	for id := range presentUsers {
		m.users = append(m.users, int(id))
	}
	slices.Sort(m.users)
	colOf := make(map[int32]int, len(m.users))
	for j, id := range m.users {
		colOf[int32(id)] = j
	}

	type labeled struct {
		id   int
		name string
	}
	rows := make([]labeled, 0, len(presentItems))
	for id := range presentItems {
		name, ok := names.ItemName(int(id))
		if !ok {
			return nil, fmt.Errorf("item %d has no catalog name", id)
		}
		rows = append(rows, labeled{id: int(id), name: name})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].name != rows[b].name {
			return rows[a].name < rows[b].name
		}
		return rows[a].id < rows[b].id
	})
	rowOf := make(map[int32]int, len(rows))
	for i, r := range rows {
		if _, dup := m.rowByName[r.name]; dup {
			return nil, fmt.Errorf("item name %q labels more than one item", r.name)
		}
		m.items = append(m.items, r.name)
		m.itemIDs = append(m.itemIDs, r.id)
		m.rowByName[r.name] = i
		rowOf[int32(r.id)] = i
	}

	m.values = make([]float32, len(m.items)*len(m.users))
	m.fill(ratings, rowOf, colOf, opts.Policy)
	return m, nil
}

type cellAgg struct {
	sum float64
	n   int
}

func (m *Matrix) fill(ratings []dataset.Rating, rowOf, colOf map[int32]int, policy DuplicatePolicy) {
	cols := len(m.users)
	written := make([]bool, len(m.values))
	var dups map[int]*cellAgg

	for _, r := range ratings {
		i, ok := rowOf[r.ItemID]
		if !ok {
			continue
		}
		j, ok := colOf[r.UserID]
		if !ok {
			continue
		}
		cell := i*cols + j

		if !written[cell] {
			written[cell] = true
			m.values[cell] = r.Value
			m.nonzero++
			continue
		}

		if policy == PolicyLast {
			m.values[cell] = r.Value
			continue
		}
		if dups == nil {
			dups = make(map[int]*cellAgg)
		}
		agg, ok := dups[cell]
		if !ok {
			agg = &cellAgg{sum: float64(m.values[cell]), n: 1}
			dups[cell] = agg
		}
		agg.sum += float64(r.Value)
		agg.n++
	}

	for cell, agg := range dups {
		m.values[cell] = float32(agg.sum / float64(agg.n))
	}
}
