package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/YuPatty/foodsaver/internal/metrics"
	"github.com/YuPatty/foodsaver/internal/store"
)

// Reader reads the current stock of one product. It returns an error
// wrapping store.ErrProductNotFound for unknown ids.
type Reader interface {
	ReadStock(ctx context.Context, id int64) (int, error)
}

// Engine answers sell-out forecasts. It is safe for concurrent use; each
// call builds its own random generator.
type Engine struct {
	reader    Reader
	params    Params
	seed      *uint64
	blockRows int
	metrics   *metrics.Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes every Forecast call start from the same generator state,
// so identical stock yields identical results.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = &seed
	}
}

// WithBlockRows sets how many trials are materialized per matrix block.
func WithBlockRows(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.blockRows = n
		}
	}
}

// WithMetrics records forecast results on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = c
	}
}

// New creates a forecast engine. Parameters are validated per call so a
// misconfigured engine reports StatusFailed rather than refusing to start.
func New(reader Reader, p Params, opts ...Option) *Engine {
	e := &Engine{
		reader:    reader,
		params:    p,
		blockRows: defaultBlockRows,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the engine's simulation parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Forecast estimates the time until productID sells out.
//
// Unknown products yield StatusNotFound and out-of-stock products
// StatusDepleted, both with a nil error. Any internal fault (read error,
// invalid parameters, cancelled context, panic) yields StatusFailed with
// Hours -999 and a non-nil error.
func (e *Engine) Forecast(ctx context.Context, productID int64) (res Result, err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res, err = failed(), fmt.Errorf("forecast product %d: panic: %v", productID, p)
		}
		e.metrics.RecordForecast(string(res.Status), time.Since(start))
		slog.Debug("forecast",
			"product_id", productID,
			"status", res.Status,
			"hours", res.Hours,
			"duration", time.Since(start),
		)
	}()

	if err := e.params.Validate(); err != nil {
		return failed(), fmt.Errorf("forecast product %d: %w", productID, err)
	}

	stock, err := e.reader.ReadStock(ctx, productID)
	if store.IsNotFound(err) {
		return notFound(), nil
	}
	if err != nil {
		return failed(), fmt.Errorf("forecast product %d: %w", productID, err)
	}
	if stock <= 0 {
		return depleted(), nil
	}

	// Even maximal demand on every step cannot reach the stock.
	if int64(e.params.Demand.Max)*int64(e.params.Steps()) < int64(stock) {
		return sufficient(), nil
	}

	steps, err := simulate(ctx, stock, e.params, e.blockRows, e.newRand())
	if err != nil {
		return failed(), fmt.Errorf("forecast product %d: %w", productID, err)
	}

	return fromMedianSteps(median(steps), e.params), nil
}

// fromMedianSteps converts a median depletion step into a Result.
func fromMedianSteps(medianSteps float64, p Params) Result {
	if medianSteps >= float64(p.Steps()) {
		return sufficient()
	}
	return estimated(medianSteps * p.Step.Hours())
}

func (e *Engine) newRand() *rand.Rand {
	if e.seed != nil {
		return rand.New(rand.NewPCG(*e.seed, *e.seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
