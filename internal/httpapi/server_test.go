package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuPatty/foodsaver/internal/forecast"
	"github.com/YuPatty/foodsaver/internal/inventory"
	"github.com/YuPatty/foodsaver/internal/metrics"
	"github.com/YuPatty/foodsaver/internal/store"
	"github.com/YuPatty/foodsaver/internal/testutil"
	"github.com/YuPatty/foodsaver/internal/writegate"
)

func testSchedule() inventory.RestockSchedule {
	return inventory.MustRestockSchedule(
		inventory.RestockTime{Hour: 9, Minute: 0, Qty: 60},
		inventory.RestockTime{Hour: 14, Minute: 0, Qty: 60},
		inventory.RestockTime{Hour: 19, Minute: 0, Qty: 60},
	)
}

func forecastParams() forecast.Params {
	return forecast.Params{
		Step:         time.Minute,
		Demand:       inventory.DemandRange{Min: 0, Max: 3},
		Trials:       200,
		HorizonHours: 48,
	}
}

// setupServer wires a real store and forecast engine behind the handler.
func setupServer(t *testing.T, opts ...Option) (http.Handler, *store.Store) {
	t.Helper()
	st, _ := testutil.NewStore(t,
		inventory.Product{ID: 1, Name: "Milk", RemainingQty: 0},
		inventory.Product{ID: 2, Name: "Eggs", RemainingQty: 60},
		inventory.Product{ID: 3, Name: "Rice", RemainingQty: 1_000_000},
	)
	fc := forecast.New(st, forecastParams(), forecast.WithSeed(1))
	clock := testutil.At(10, 30)
	opts = append([]Option{WithNow(clock.Now)}, opts...)
	return New(st, fc, testSchedule(), opts...).Handler(), st
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func TestForecast_Estimated(t *testing.T) {
	h, _ := setupServer(t)
	rr := do(t, h, http.MethodGet, "/api/forecast/2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decode[forecastResponse](t, rr)
	assert.True(t, resp.OK)
	assert.Equal(t, int64(2), resp.ProductID)
	assert.Equal(t, forecast.StatusEstimated, resp.Status)
	assert.Greater(t, resp.SellOutHours, 0.0)
	assert.Contains(t, resp.Message, "expected to sell out within")
	assert.Nil(t, resp.NextRestockAt)
}

func TestForecast_DepletedIncludesNextRestock(t *testing.T) {
	h, _ := setupServer(t)
	rr := do(t, h, http.MethodGet, "/api/forecast/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[forecastResponse](t, rr)
	assert.True(t, resp.OK)
	assert.Equal(t, forecast.StatusDepleted, resp.Status)
	assert.Equal(t, 0.0, resp.SellOutHours)
	assert.Equal(t, "out of stock, next restock at 14:00", resp.Message)
	require.NotNil(t, resp.NextRestockAt)
	assert.Equal(t, 14, resp.NextRestockAt.Hour())
	require.NotNil(t, resp.HoursUntilRestock)
	assert.Equal(t, 3.5, *resp.HoursUntilRestock)
}

func TestForecast_Sufficient(t *testing.T) {
	h, _ := setupServer(t)
	resp := decode[forecastResponse](t, do(t, h, http.MethodGet, "/api/forecast/3", nil))
	assert.Equal(t, 999.0, resp.SellOutHours)
	assert.Equal(t, "stock sufficient (24h+)", resp.Message)
}

func TestForecast_NotFound(t *testing.T) {
	h, _ := setupServer(t)
	rr := do(t, h, http.MethodGet, "/api/forecast/404", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[forecastResponse](t, rr)
	assert.Equal(t, -1.0, resp.SellOutHours)
	assert.Equal(t, forecast.StatusNotFound, resp.Status)
}

func TestForecast_BadID(t *testing.T) {
	h, _ := setupServer(t)
	rr := do(t, h, http.MethodGet, "/api/forecast/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type failingForecaster struct{}

func (failingForecaster) Forecast(context.Context, int64) (forecast.Result, error) {
	return forecast.Result{Status: forecast.StatusFailed, Hours: forecast.HoursFailed}, errors.New("disk I/O error")
}

func TestForecast_FailureIs500(t *testing.T) {
	st, _ := testutil.NewStore(t)
	h := New(st, failingForecaster{}, testSchedule()).Handler()

	rr := do(t, h, http.MethodGet, "/api/forecast/1", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	resp := decode[forecastResponse](t, rr)
	assert.False(t, resp.OK)
	assert.Equal(t, -999.0, resp.SellOutHours)
	assert.Contains(t, resp.Message, "disk I/O error")
	assert.Equal(t, rr.Header().Get(HeaderRequestID), resp.RequestID)
}

func TestNotifications_CreateAndList(t *testing.T) {
	h, _ := setupServer(t)

	for i := 0; i < 3; i++ {
		rr := do(t, h, http.MethodPost, "/api/notifications", map[string]any{
			"user_id": 7,
			"message": fmt.Sprintf("price drop %d", i),
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Positive(t, decode[createNotificationResponse](t, rr).ID)
	}
	do(t, h, http.MethodPost, "/api/notifications", map[string]any{"user_id": 8, "message": "other"})

	rr := do(t, h, http.MethodGet, "/api/notifications?user_id=7&limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[notificationsResponse](t, rr)
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, "price drop 2", resp.Notifications[0].Message)
	assert.Equal(t, "price drop 1", resp.Notifications[1].Message)
}

func TestNotifications_DefaultsToSystemUser(t *testing.T) {
	h, st := setupServer(t)
	_, err := st.InsertNotification(context.Background(), inventory.Notification{Message: "low stock"})
	require.NoError(t, err)

	resp := decode[notificationsResponse](t, do(t, h, http.MethodGet, "/api/notifications", nil))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "low stock", resp.Notifications[0].Message)
}

func TestNotifications_Validation(t *testing.T) {
	h, _ := setupServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/notifications?limit=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/notifications?user_id=x", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/notifications", map[string]any{"user_id": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/notifications", map[string]any{"message": "x", "extra": true}).Code)
}

func TestConsume(t *testing.T) {
	h, _ := setupServer(t)

	rr := do(t, h, http.MethodPost, "/api/products/2/consume", map[string]int{"qty": 5})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 55, decode[consumeResponse](t, rr).RemainingQty)

	rr = do(t, h, http.MethodPost, "/api/products/2/consume", map[string]int{"qty": 500})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[consumeResponse](t, rr).RemainingQty)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/products/99/consume", map[string]int{"qty": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/products/2/consume", map[string]int{"qty": 0}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/products/x/consume", map[string]int{"qty": 1}).Code)
}

// busyStore fails every write as if the gate were held.
type busyStore struct{}

func (busyStore) Ping(context.Context) error { return nil }
func (busyStore) ListNotifications(context.Context, int64, int) ([]inventory.Notification, error) {
	return nil, nil
}
func (busyStore) InsertNotification(context.Context, inventory.Notification) (int64, error) {
	return 0, fmt.Errorf("insert notification: %w", writegate.ErrBusy)
}
func (busyStore) ConsumeStock(context.Context, int64, int) (int, error) {
	return 0, fmt.Errorf("consume stock: %w", writegate.ErrBusy)
}

func TestWrites_BusyIs503(t *testing.T) {
	h := New(busyStore{}, failingForecaster{}, testSchedule()).Handler()

	rr := do(t, h, http.MethodPost, "/api/products/1/consume", map[string]int{"qty": 1})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	rr = do(t, h, http.MethodPost, "/api/notifications", map[string]any{"message": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRequestID(t *testing.T) {
	h, _ := setupServer(t)

	rr := do(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(HeaderRequestID))
}

func TestHealth_Unhealthy(t *testing.T) {
	st, _ := testutil.NewStore(t)
	h := New(st, failingForecaster{}, testSchedule()).Handler()
	require.NoError(t, st.Close())

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/healthz", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewCollector()
	h, _ := setupServer(t, WithMetrics(m))

	do(t, h, http.MethodGet, "/api/forecast/2", nil)
	rr := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `foodsaver_http_requests_total{method="GET",route="GET /api/forecast/{id}",status="200"} 1`)
}

func TestMetricsEndpoint_DisabledWithoutCollector(t *testing.T) {
	h, _ := setupServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", nil).Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	st, _ := testutil.NewStore(t)
	srv := New(st, failingForecaster{}, testSchedule())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
