package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec

	activeSubscriptions prometheus.Gauge
	historyEvents       *prometheus.CounterVec
	channelFailures     *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "http_errors_total",
			Help:      "Errors returned to clients, by error code.",
		}, []string{"path", "method", "code"}),
		activeSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "console",
			Name:      "history_subscriptions_active",
			Help:      "Order history subscriptions currently open.",
		}),
		historyEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "history_events_total",
			Help:      "Live history events, by outcome (applied, mismatched, malformed, duplicate).",
		}, []string{"outcome"}),
		channelFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "history_channel_failures_total",
			Help:      "Push channel failures, by kind (auth, transport).",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCount,
		m.requestDuration,
		m.errorCount,
		m.activeSubscriptions,
		m.historyEvents,
		m.channelFailures,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// SubscriptionOpened and SubscriptionClosed track the active gauge.
func (m *Metrics) SubscriptionOpened() {
	if m == nil {
		return
	}
	m.activeSubscriptions.Inc()
}

func (m *Metrics) SubscriptionClosed() {
	if m == nil {
		return
	}
	m.activeSubscriptions.Dec()
}

// RecordHistoryEvent counts a live event by outcome.
func (m *Metrics) RecordHistoryEvent(outcome string) {
	if m == nil {
		return
	}
	m.historyEvents.WithLabelValues(outcome).Inc()
}

// RecordChannelFailure counts a push channel failure by kind.
func (m *Metrics) RecordChannelFailure(kind string) {
	if m == nil {
		return
	}
	m.channelFailures.WithLabelValues(kind).Inc()
}
