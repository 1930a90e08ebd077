// Package identity issues node identifiers: strictly increasing decimal
// strings, durable across restarts via a persisted counter.
package identity

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	pkgerrors "flowforge-backend/pkg/errors"
)

// CounterStore persists the last issued counter value. Last-writer-wins
// across concurrent editors is acceptable; strict cross-process atomicity is
// not required.
type CounterStore interface {
	LoadCounter(ctx context.Context) (uint64, error)
	StoreCounter(ctx context.Context, value uint64) error
}

// Allocator hands out monotonically increasing node ids. It is an explicit,
// injectable object so independent flows and tests can run their own
// allocators in one process without cross-contamination.
type Allocator struct {
	mu     sync.Mutex
	last   uint64
	store  CounterStore
	logger *zap.Logger
}

// NewAllocator creates an allocator seeded from the persisted counter
func NewAllocator(ctx context.Context, store CounterStore, logger *zap.Logger) (*Allocator, error) {
	last, err := store.LoadCounter(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load id counter")
	}
	return &Allocator{last: last, store: store, logger: logger}, nil
}

// NextID returns the next identifier. No two calls ever return the same
// value within a process; the persisted counter write is best-effort and
// never fails the caller.
func (a *Allocator) NextID(ctx context.Context) string {
	a.mu.Lock()
	a.last++
	value := a.last
	a.mu.Unlock()

	if err := a.store.StoreCounter(ctx, value); err != nil {
		a.logger.Warn("failed to persist id counter",
			zap.Uint64("value", value),
			zap.Error(err),
		)
	}

	return strconv.FormatUint(value, 10)
}

// Last returns the most recently issued counter value
func (a *Allocator) Last() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}
