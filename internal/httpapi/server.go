// Package httpapi serves the forecast and notification endpoints the web
// frontend calls, plus health and metrics.
//
// Routes:
//
//	GET  /api/forecast/{id}
//	GET  /api/notifications?user_id=&limit=
//	POST /api/notifications
//	POST /api/products/{id}/consume
//	GET  /healthz
//	GET  /metrics
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/YuPatty/foodsaver/internal/forecast"
	"github.com/YuPatty/foodsaver/internal/inventory"
	"github.com/YuPatty/foodsaver/internal/metrics"
)

// Store is the store surface the handlers use.
type Store interface {
	Ping(ctx context.Context) error
	ListNotifications(ctx context.Context, userID int64, limit int) ([]inventory.Notification, error)
	InsertNotification(ctx context.Context, n inventory.Notification) (int64, error)
	ConsumeStock(ctx context.Context, id int64, qty int) (int, error)
}

// Forecaster answers sell-out forecasts.
type Forecaster interface {
	Forecast(ctx context.Context, productID int64) (forecast.Result, error)
}

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 5 * time.Second

// Server holds the dependencies of the handlers.
type Server struct {
	store      Store
	forecaster Forecaster
	schedule   inventory.RestockSchedule
	now        func() time.Time
	metrics    *metrics.Collector
}

// Option configures a Server.
type Option func(*Server)

// WithNow replaces the clock used to compute the next restock.
func WithNow(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithMetrics records request metrics and serves /metrics from c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// New creates a server. schedule is used to tell callers when an
// out-of-stock product is next restocked.
func New(st Store, fc Forecaster, schedule inventory.RestockSchedule, opts ...Option) *Server {
	s := &Server{
		store:      st,
		forecaster: fc,
		schedule:   schedule,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in request-id and logging
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/forecast/{id}", s.getForecast)
	mux.HandleFunc("GET /api/notifications", s.listNotifications)
	mux.HandleFunc("POST /api/notifications", s.postNotification)
	mux.HandleFunc("POST /api/products/{id}/consume", s.consumeStock)
	mux.HandleFunc("GET /healthz", s.health)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return WithRequestID(WithLogging(s.metrics, mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Returns nil after a clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	slog.Info("http server stopped")
	return nil
}
