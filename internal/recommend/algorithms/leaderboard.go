// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"context"
	"slices"
	"sort"

	"github.com/tomtom215/animerec/internal/dataset"
)

// RatingStat is the aggregate rating of one item.
type RatingStat struct {
	ItemID int
	Mean   float64
	Count  int
}

// AcceptFunc decides whether a leaderboard candidate is kept.
type AcceptFunc func(ctx context.Context, stat RatingStat) (bool, error)

// Leaderboard ranks items by mean rating.
//
// Items are grouped by id in ascending id order, then stably sorted by mean
// descending, so equal means keep ascending id order.
type Leaderboard struct {
	BaseAlgorithm
	ranked []RatingStat
	byID   map[int]int
}

// NewLeaderboard creates an untrained leaderboard.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{BaseAlgorithm: BaseAlgorithm{name: "leaderboard"}}
}

// Train aggregates ratings into per-item mean and count.
func (l *Leaderboard) Train(ctx context.Context, ratings []dataset.Rating) error {
	if err := l.beginTraining(); err != nil {
		return err
	}

	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[int32]*acc)
	for i, r := range ratings {
		if i%(1<<20) == 0 && ContextCancelled(ctx) {
			l.abortTraining()
			return ctx.Err()
		}
		a := groups[r.ItemID]
		if a == nil {
			a = &acc{}
			groups[r.ItemID] = a
		}
		a.sum += float64(r.Value)
		a.count++
	}

	ranked := make([]RatingStat, 0, len(groups))
	for id, a := range groups {
		ranked = append(ranked, RatingStat{ItemID: int(id), Mean: a.sum / float64(a.count), Count: a.count})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].ItemID < ranked[j].ItemID })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Mean > ranked[j].Mean })

	byID := make(map[int]int, len(ranked))
	for i, s := range ranked {
		byID[s.ItemID] = i
	}

	l.ranked = ranked
	l.byID = byID
	l.markTrained()
	return nil
}

// Len returns the number of ranked items, before any vote floor.
func (l *Leaderboard) Len() int { return len(l.ranked) }

// Stat returns the aggregate for itemID.
func (l *Leaderboard) Stat(itemID int) (RatingStat, bool) {
	i, ok := l.byID[itemID]
	if !ok {
		return RatingStat{}, false
	}
	return l.ranked[i], true
}

// Top walks the board best first, skipping items with Count <= minVotes,
// and returns the first limit items accept keeps. accept is called in rank
// order and never again once limit items are found. A nil accept keeps everything.
func (l *Leaderboard) Top(ctx context.Context, minVotes, limit int, accept AcceptFunc) ([]RatingStat, error) {
	if !l.IsTrained() {
		return nil, ErrNotTrained
	}
	if limit <= 0 {
		return []RatingStat{}, nil
	}

	out := make([]RatingStat, 0, min(limit, 64))
	for _, s := range l.ranked {
		if len(out) == limit {
			break
		}
		if s.Count <= minVotes {
			continue
		}
		if accept != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ok, err := accept(ctx, s)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, s)
	}
	return slices.Clip(out), nil
}
