// Package metrics exposes Prometheus metrics for the HTTP API and the ledger.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ricemill/internal/domain/ledger"
	"ricemill/pkg/logger"
)

const namespace = "ricemill"

// StockSource lists every stock lot.
type StockSource interface {
	AllStocks(ctx context.Context) ([]ledger.StockRecord, error)
}

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the HTTP and ledger collectors. A nil source skips the
// ledger gauges.
func New(source StockSource) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
	)
	if source != nil {
		m.registry.MustRegister(newLedgerCollector(source))
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by their route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ledgerCollector reads stock levels at scrape time.
type ledgerCollector struct {
	source StockSource

	quantity *prometheus.Desc
	lots     *prometheus.Desc
	up       *prometheus.Desc
}

func newLedgerCollector(source StockSource) *ledgerCollector {
	return &ledgerCollector{
		source: source,
		quantity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "stock", "quantity_kg"),
			"Stock on hand in kilograms.",
			[]string{"family", "warehouse"}, nil,
		),
		lots: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "stock", "lots"),
			"Stock lots by status.",
			[]string{"family", "status"}, nil,
		),
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "up"),
			"Whether the last scrape could read the record store.",
			nil, nil,
		),
	}
}

func (c *ledgerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.quantity
	ch <- c.lots
	ch <- c.up
}

func (c *ledgerCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stocks, err := c.source.AllStocks(ctx)
	if err != nil {
		logger.Warn(ctx, "metrics scrape could not read stock", "error", err)
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)

	type famKey struct{ family, label string }
	quantities := make(map[famKey]float64)
	lots := make(map[famKey]float64)
	for _, st := range stocks {
		quantities[famKey{string(st.Family), st.Warehouse}] += st.Quantity.Float64()
		lots[famKey{string(st.Family), string(st.Status)}]++
	}

	for k, v := range quantities {
		ch <- prometheus.MustNewConstMetric(c.quantity, prometheus.GaugeValue, v, k.family, k.label)
	}
	for k, v := range lots {
		ch <- prometheus.MustNewConstMetric(c.lots, prometheus.GaugeValue, v, k.family, k.label)
	}
}
