package forecast

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuPatty/foodsaver/internal/inventory"
	"github.com/YuPatty/foodsaver/internal/store"
	"github.com/YuPatty/foodsaver/internal/testutil"
)

// stockReader is an in-memory Reader.
type stockReader map[int64]int

func (r stockReader) ReadStock(ctx context.Context, id int64) (int, error) {
	qty, ok := r[id]
	if !ok {
		return 0, fmt.Errorf("read stock %d: %w", id, store.ErrProductNotFound)
	}
	return qty, nil
}

type errReader struct{ err error }

func (r errReader) ReadStock(context.Context, int64) (int, error) { return 0, r.err }

type panicReader struct{}

func (panicReader) ReadStock(context.Context, int64) (int, error) { panic("boom") }

func defaultParams() Params {
	return Params{
		Step:         time.Minute,
		Demand:       inventory.DemandRange{Min: 0, Max: 3},
		Trials:       DefaultTrials,
		HorizonHours: DefaultHorizonHours,
	}
}

func TestForecast_ZeroStockIsDepletedForAnySeed(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		e := New(stockReader{1: 0}, defaultParams(), WithSeed(seed))
		res, err := e.Forecast(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, Result{Status: StatusDepleted, Hours: 0}, res)
	}
}

func TestForecast_UnknownProduct(t *testing.T) {
	e := New(stockReader{}, defaultParams())
	res, err := e.Forecast(context.Background(), 404)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Equal(t, -1.0, res.Hours)
}

func TestForecast_HugeStockIsSufficient(t *testing.T) {
	e := New(stockReader{1: 1_000_000_000}, defaultParams(), WithSeed(1))
	res, err := e.Forecast(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Result{Status: StatusSufficient, Hours: 999}, res)
}

func TestForecast_SimulatedBeyondHorizonIsSufficient(t *testing.T) {
	// Reachable with maximal demand, so the matrix path runs, but the
	// median path never gets there in 48h.
	e := New(stockReader{1: 5000}, defaultParams(), WithSeed(3))
	res, err := e.Forecast(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StatusSufficient, res.Status)
	assert.Equal(t, 999.0, res.Hours)
}

func TestForecast_DeterministicDemand(t *testing.T) {
	p := defaultParams()
	p.Step = 30 * time.Minute
	p.Demand = inventory.DemandRange{Min: 1, Max: 1}

	e := New(stockReader{1: 7}, p)
	res, err := e.Forecast(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Result{Status: StatusEstimated, Hours: 3.5}, res)
}

func TestForecast_SameSeedSameResult(t *testing.T) {
	reader := stockReader{1: 150}
	a := New(reader, defaultParams(), WithSeed(42))
	b := New(reader, defaultParams(), WithSeed(42))

	ra, err := a.Forecast(context.Background(), 1)
	require.NoError(t, err)
	rb, err := b.Forecast(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, ra, rb)

	again, err := a.Forecast(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, ra, again, "a seeded engine repeats itself across calls")
}

func TestForecast_DifferentSeedsConverge(t *testing.T) {
	reader := stockReader{1: 100}
	var hours []float64
	for _, seed := range []uint64{1, 2, 3, 4} {
		res, err := New(reader, defaultParams(), WithSeed(seed)).Forecast(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, StatusEstimated, res.Status)
		hours = append(hours, res.Hours)
	}
	for _, h := range hours[1:] {
		assert.InDelta(t, hours[0], h, 0.1)
	}
	// mean demand 1.5/min: 100 units last about 67 minutes
	assert.InDelta(t, 1.1, hours[0], 0.1)
}

func TestForecast_BlockSizeDoesNotChangeDistribution(t *testing.T) {
	reader := stockReader{1: 300}
	small, err := New(reader, defaultParams(), WithSeed(9), WithBlockRows(7)).Forecast(context.Background(), 1)
	require.NoError(t, err)
	large, err := New(reader, defaultParams(), WithSeed(9), WithBlockRows(1000)).Forecast(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, small.Hours, large.Hours, 0.1)
}

func TestForecast_ReaderErrorFails(t *testing.T) {
	e := New(errReader{err: errors.New("disk I/O error")}, defaultParams())
	res, err := e.Forecast(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, Result{Status: StatusFailed, Hours: -999}, res)
}

func TestForecast_InvalidParamsFail(t *testing.T) {
	p := defaultParams()
	p.Trials = 0
	res, err := New(stockReader{1: 10}, p).Forecast(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestForecast_PanicIsRecovered(t *testing.T) {
	res, err := New(panicReader{}, defaultParams()).Forecast(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, -999.0, res.Hours)
}

func TestForecast_CancelledContextFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := New(stockReader{1: 100}, defaultParams()).Forecast(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestForecast_AgainstSQLiteStore(t *testing.T) {
	st, _ := testutil.NewStore(t,
		inventory.Product{ID: 1, Name: "Milk", RemainingQty: 0},
		inventory.Product{ID: 2, Name: "Eggs", RemainingQty: 60},
	)
	e := New(st, defaultParams(), WithSeed(5))

	res, err := e.Forecast(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, StatusDepleted, res.Status)

	res, err = e.Forecast(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, StatusEstimated, res.Status)
	assert.Greater(t, res.Hours, 0.0)
	assert.Less(t, res.Hours, 2.0)

	res, err = e.Forecast(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, res.Status)
}

func TestResult_Message(t *testing.T) {
	tests := []struct {
		res  Result
		want string
	}{
		{depleted(), "out of stock, restock expected later"},
		{notFound(), "product not found or cannot be forecast"},
		{sufficient(), "stock sufficient (24h+)"},
		{estimated(30), "stock sufficient (24h+)"},
		{estimated(3.46), "expected to sell out within 3.5 hours"},
		{failed(), "forecast failed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.res.Message())
	}
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, defaultParams().Validate())
	assert.Equal(t, 2880, defaultParams().Steps())

	p := defaultParams()
	p.Step = 0
	assert.Error(t, p.Validate())

	p = defaultParams()
	p.Step = 49 * time.Hour
	assert.Error(t, p.Validate(), "horizon shorter than a step")

	p = defaultParams()
	p.Demand = inventory.DemandRange{Min: 2, Max: 1}
	assert.Error(t, p.Validate())
}
