// Package metrics exposes Prometheus metrics for the HTTP layer, certificate
// searches and entity totals.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        prometheus.Gauge

	searchesTotal   *prometheus.CounterVec
	searchDuration  prometheus.Histogram
	searchPageItems prometheus.Histogram
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giftcert_http_requests_total",
			Help: "HTTP requests processed, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "giftcert_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "giftcert_http_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		searchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giftcert_certificate_searches_total",
			Help: "Certificate searches, by result.",
		}, []string{"result"}), // result: ok|empty|error
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "giftcert_certificate_search_duration_seconds",
			Help:    "Certificate search latency including the count query.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		searchPageItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "giftcert_certificate_search_page_items",
			Help:    "Items returned per certificate search page.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.inflight,
		m.searchesTotal,
		m.searchDuration,
		m.searchPageItems,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments requests. The route label is the chi route pattern
// so ids in the path do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inflight.Inc()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			m.inflight.Dec()
			route := routePattern(r)
			method := strings.ToUpper(r.Method)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(ww, r)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// ObserveSearch records one certificate search.
func (m *Metrics) ObserveSearch(d time.Duration, items int, total int64, err error) {
	m.searchDuration.Observe(d.Seconds())
	switch {
	case err != nil:
		m.searchesTotal.WithLabelValues("error").Inc()
		return
	case total == 0:
		m.searchesTotal.WithLabelValues("empty").Inc()
	default:
		m.searchesTotal.WithLabelValues("ok").Inc()
	}
	m.searchPageItems.Observe(float64(items))
}

// TotalsSource reports entity totals keyed by entity name.
type TotalsSource interface {
	Totals(ctx context.Context) (map[string]int64, error)
}

// RegisterTotals exposes src as the giftcert_entities gauge, read on every scrape.
func (m *Metrics) RegisterTotals(src TotalsSource) error {
	err := m.registry.Register(&totalsCollector{
		src:  src,
		desc: prometheus.NewDesc("giftcert_entities", "Stored entities by type.", []string{"entity"}, nil),
	})
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return nil
	}
	return err
}

type totalsCollector struct {
	src  TotalsSource
	desc *prometheus.Desc
}

func (c *totalsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *totalsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	totals, err := c.src.Totals(ctx)
	if err != nil {
		slog.Warn("metrics: collect entity totals", slog.String("error", err.Error()))
		return
	}
	for name, n := range totals {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), name)
	}
}
