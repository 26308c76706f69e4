package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YuPatty/foodsaver/internal/inventory"
	"github.com/YuPatty/foodsaver/internal/metrics"
	"github.com/YuPatty/foodsaver/internal/store"
)

const (
	// DefaultReadTimeout bounds the snapshot read of a tick.
	DefaultReadTimeout = 500 * time.Millisecond

	// DefaultCommitTimeout bounds gate acquisition plus the batch commit.
	DefaultCommitTimeout = 5 * time.Second
)

// Store is the slice of the store adapter the scheduler needs.
type Store interface {
	ReadProducts(ctx context.Context) ([]inventory.Product, error)
	ApplyBatch(ctx context.Context, b inventory.Batch) error
}

// Config is everything a scheduler is constructed with.
type Config struct {
	Params        Params
	Schedule      inventory.RestockSchedule
	ReadTimeout   time.Duration
	CommitTimeout time.Duration
}

// TickReport summarizes one tick for logs, metrics and tests.
type TickReport struct {
	ID            string
	At            time.Time
	Products      int
	Updates       int
	Restocked     int
	Notifications int
	Committed     bool
	Duration      time.Duration
}

// Scheduler evolves stock levels on a fixed interval.
//
// Thread-safety: Tick may be called from any goroutine; concurrent calls
// are serialized so ticks never interleave.
type Scheduler struct {
	store   Store
	cfg     Config
	clock   Clock
	metrics *metrics.Collector

	mu  sync.Mutex // serializes ticks, guards rng
	rng *rand.Rand
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock used for restock trigger matching.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithRand replaces the demand source. Use a seeded generator for
// reproducible runs.
func WithRand(r *rand.Rand) Option {
	return func(s *Scheduler) {
		s.rng = r
	}
}

// WithSeed seeds the demand source deterministically.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed)))
}

// WithMetrics records tick metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Scheduler) {
		s.metrics = c
	}
}

// NewScheduler creates a scheduler over st.
//
// Zero timeouts in cfg fall back to DefaultReadTimeout and
// DefaultCommitTimeout.
func NewScheduler(st Store, cfg Config, opts ...Option) (*Scheduler, error) {
	if st == nil {
		return nil, errors.New("new scheduler: nil store")
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = DefaultCommitTimeout
	}

	s := &Scheduler{
		store: st,
		cfg:   cfg,
		clock: SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s, nil
}

// Run ticks every UpdateInterval until ctx is cancelled, then returns
// ctx.Err(). The first tick happens one interval after Run starts.
//
// Tick failures are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.cfg.Params.UpdateInterval
	slog.Info("scheduler started",
		"interval", interval,
		"restock_triggers", s.cfg.Schedule.Len(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			// Errors are already logged and counted by Tick.
			_, _ = s.Tick(ctx)
		}
	}
}

// Tick executes exactly one read, compute, commit cycle.
//
// On a read failure the tick is skipped and a *TickError with PhaseRead is
// returned. On a commit failure nothing is written and a *TickError with
// PhaseCommit is returned. The report is filled as far as the tick got.
func (s *Scheduler) Tick(ctx context.Context) (TickReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	report := TickReport{
		ID: uuid.NewString(),
		At: s.clock.Now(),
	}
	logger := slog.With("tick", report.ID)

	readCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	products, err := s.store.ReadProducts(readCtx)
	cancel()
	if err != nil {
		report.Duration = time.Since(start)
		s.metrics.RecordTick(metrics.TickSkipped, report.Duration)
		logger.Warn("tick skipped", "phase", PhaseRead, "error", err)
		return report, &TickError{Phase: PhaseRead, TickID: report.ID, Err: err}
	}
	report.Products = len(products)

	draw := func() int { return s.cfg.Params.Demand.Draw(s.rng) }
	out := Plan(products, report.At, s.cfg.Params, s.cfg.Schedule, draw)
	report.Updates = len(out.Batch.Updates)
	report.Restocked = out.Restocked
	report.Notifications = len(out.Batch.Notifications)

	if out.Trigger != nil {
		logger.Info("restock trigger", "at", out.Trigger.String(), "qty", out.Trigger.Qty, "products", out.Restocked)
	}

	if out.Batch.Empty() {
		report.Duration = time.Since(start)
		s.metrics.RecordTick(metrics.TickIdle, report.Duration)
		logger.Debug("tick idle", "products", report.Products)
		return report, nil
	}

	commitCtx, cancel := context.WithTimeout(ctx, s.cfg.CommitTimeout)
	err = s.store.ApplyBatch(commitCtx, out.Batch)
	cancel()
	if err != nil {
		report.Duration = time.Since(start)
		s.metrics.RecordTick(metrics.TickFailed, report.Duration)
		attrs := []any{"phase", PhaseCommit, "updates", report.Updates, "error", err}
		var be *store.BatchError
		if errors.As(err, &be) {
			attrs = append(attrs, "statement", be.Statement, "product_id", be.ProductID)
		}
		logger.Error("tick rolled back", attrs...)
		return report, &TickError{Phase: PhaseCommit, TickID: report.ID, Err: err}
	}

	report.Committed = true
	report.Duration = time.Since(start)
	s.metrics.RecordTick(metrics.TickCommitted, report.Duration)
	s.metrics.RecordBatch(report.Updates, report.Restocked, report.Notifications)
	for _, u := range out.Batch.Updates {
		s.metrics.SetStock(u.ProductID, u.Qty)
	}
	for _, n := range out.Batch.Notifications {
		logger.Info("low stock", "product_id", *n.ProductID, "product", *n.ProductName)
	}
	logger.Debug("tick committed",
		"products", report.Products,
		"updates", report.Updates,
		"notifications", report.Notifications,
		"duration", report.Duration,
	)
	return report, nil
}
