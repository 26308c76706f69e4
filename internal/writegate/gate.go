// Package writegate serializes write transactions against the inventory
// database.
//
// SQLite in WAL mode admits many readers but only one writer. A single Gate
// is created per process and handed to every component that writes (the
// stock update scheduler and the foreground request handlers), so write
// transactions never interleave and a blocked writer gives up after a
// bounded wait instead of hanging.
package writegate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrBusy is returned when the gate could not be acquired in time.
var ErrBusy = errors.New("write gate busy")

// Gate is a process-wide mutual-exclusion point for writes.
//
// Thread-safety: Gate is safe for concurrent use.
type Gate struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// New creates a gate whose Do waits at most acquireTimeout for the slot.
// A non-positive timeout means wait until the caller's context is done.
func New(acquireTimeout time.Duration) *Gate {
	return &Gate{
		sem:     semaphore.NewWeighted(1),
		timeout: acquireTimeout,
	}
}

// Do acquires the gate, runs fn, and releases the gate.
//
// fn is expected to run exactly one transaction. When the gate cannot be
// acquired before the timeout or ctx expires, fn is not called and the
// returned error wraps ErrBusy (and ctx.Err() when the caller gave up).
func (g *Gate) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	acquireCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.sem.Acquire(acquireCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ErrBusy, ctxErr)
		}
		return fmt.Errorf("%w: waited %s", ErrBusy, g.timeout)
	}
	defer g.sem.Release(1)

	return fn(ctx)
}

// TryDo runs fn only if the gate is free right now.
// Returns ErrBusy without waiting otherwise.
func (g *Gate) TryDo(ctx context.Context, fn func(ctx context.Context) error) error {
	if !g.sem.TryAcquire(1) {
		return ErrBusy
	}
	defer g.sem.Release(1)
	return fn(ctx)
}
