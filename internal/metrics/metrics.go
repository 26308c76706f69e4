// Package metrics exposes Prometheus metrics for the stock scheduler, the
// forecast engine and the HTTP query surface.
//
// Metrics:
//   - foodsaver_ticks_total{outcome}: scheduler ticks by outcome
//     (committed, idle, skipped, failed)
//   - foodsaver_tick_duration_seconds: wall time of one tick
//   - foodsaver_stock_updates_total: product rows written by ticks
//   - foodsaver_restocks_total: products restocked by a schedule trigger
//   - foodsaver_low_stock_notifications_total: notifications raised by ticks
//   - foodsaver_stock_level{product_id}: last committed quantity per product
//   - foodsaver_forecasts_total{status}: forecast results by status
//   - foodsaver_forecast_duration_seconds: forecast latency
//   - foodsaver_http_requests_total{method,route,status}
//   - foodsaver_http_request_duration_seconds{method,route}
//
// A Collector owns its registry so tests and multiple processes in one
// binary never collide on the global default registerer. All methods are
// safe to call on a nil *Collector, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodsaver"

// Tick outcomes.
const (
	TickCommitted = "committed"
	TickIdle      = "idle"
	TickSkipped   = "skipped"
	TickFailed    = "failed"
)

// Collector holds every metric the process exports.
type Collector struct {
	registry *prometheus.Registry

	ticks         *prometheus.CounterVec
	tickDuration  prometheus.Histogram
	stockUpdates  prometheus.Counter
	restocks      prometheus.Counter
	notifications prometheus.Counter
	stockLevel    *prometheus.GaugeVec

	forecasts        *prometheus.CounterVec
	forecastDuration prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with a fresh registry that also carries
// the Go runtime and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Scheduler ticks by outcome",
		}, []string{"outcome"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time of one scheduler tick",
			Buckets:   prometheus.DefBuckets,
		}),
		stockUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_updates_total",
			Help:      "Product quantities written by scheduler ticks",
		}),
		restocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restocks_total",
			Help:      "Products restocked by a schedule trigger",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_stock_notifications_total",
			Help:      "Low-stock notifications raised by scheduler ticks",
		}),
		stockLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stock_level",
			Help:      "Last committed remaining quantity per product",
		}, []string{"product_id"}),
		forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_total",
			Help:      "Sell-out forecasts by result status",
		}, []string{"status"}),
		forecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Latency of one Monte Carlo forecast",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.ticks,
		c.tickDuration,
		c.stockUpdates,
		c.restocks,
		c.notifications,
		c.stockLevel,
		c.forecasts,
		c.forecastDuration,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordTick counts one tick with the given outcome.
func (c *Collector) RecordTick(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.ticks.WithLabelValues(outcome).Inc()
	c.tickDuration.Observe(d.Seconds())
}

// RecordBatch counts the rows of one committed tick.
func (c *Collector) RecordBatch(updates, restocks, notifications int) {
	if c == nil {
		return
	}
	c.stockUpdates.Add(float64(updates))
	c.restocks.Add(float64(restocks))
	c.notifications.Add(float64(notifications))
}

// SetStock records the committed quantity of one product.
func (c *Collector) SetStock(productID int64, qty int) {
	if c == nil {
		return
	}
	c.stockLevel.WithLabelValues(strconv.FormatInt(productID, 10)).Set(float64(qty))
}

// RecordForecast counts one forecast result.
func (c *Collector) RecordForecast(status string, d time.Duration) {
	if c == nil {
		return
	}
	c.forecasts.WithLabelValues(status).Inc()
	c.forecastDuration.Observe(d.Seconds())
}

// ObserveHTTP records one served request. route is the mux pattern, not
// the raw path, to keep label cardinality bounded.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
