// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var (
	// ErrNotTrained is returned when a model is queried before Train.
	ErrNotTrained = errors.New("model not trained")

	// ErrAlreadyTrained is returned when Train is called twice on one model.
	ErrAlreadyTrained = errors.New("model already trained")
)

// BaseAlgorithm carries the training state shared by all models.
// It must not be copied after first use.
type BaseAlgorithm struct {
	name      string
	training  atomic.Bool
	trained   atomic.Bool
	trainedAt atomic.Int64
}

// Name returns the model identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained reports whether Train completed.
func (b *BaseAlgorithm) IsTrained() bool {
	return b.trained.Load()
}

// TrainedAt returns when Train completed, or the zero time.
func (b *BaseAlgorithm) TrainedAt() time.Time {
	ns := b.trainedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// beginTraining claims the one training run of the model.
func (b *BaseAlgorithm) beginTraining() error {
	if !b.training.CompareAndSwap(false, true) {
		return ErrAlreadyTrained
	}
	return nil
}

// abortTraining releases the claim after a failed run.
func (b *BaseAlgorithm) abortTraining() {
	b.training.Store(false)
}

// markTrained publishes the trained state. Model fields must be fully written before the call.
func (b *BaseAlgorithm) markTrained() {
	b.trainedAt.Store(time.Now().UnixNano())
	b.trained.Store(true)
}

// ContextCancelled checks if the context has been cancelled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
