// Package metrics provides Prometheus instrumentation for the event bus.
//
// It pre-defines the bus metrics (publishes, dispatch latency, handler
// invocations, live subscriptions, duplicate rejections) and gives you
// helpers to register your own custom metrics against the same registry.
//
// Expose the scrape endpoint from your HTTP server:
//
//	r.Get("/metrics", metrics.Handler())
//
// Then scrape it from Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ─────────────────────────────────────────────
// Built-in bus metrics
// ─────────────────────────────────────────────

var (
	// PublishTotal counts Publish calls per event type, including publishes
	// that found no subscribers.
	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sandesh",
			Subsystem: "bus",
			Name:      "publishes_total",
			Help:      "Total number of publish calls.",
		},
		[]string{"event"},
	)

	// DispatchDuration tracks how long one publish spends running handlers,
	// per event type.
	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sandesh",
			Subsystem: "bus",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of handler dispatch per publish in seconds.",
			Buckets:   []float64{.000001, .00001, .0001, .001, .01, .1, 1},
		},
		[]string{"event"},
	)

	// HandlerInvocations counts individual handler calls per event type.
	HandlerInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sandesh",
			Subsystem: "bus",
			Name:      "handler_invocations_total",
			Help:      "Total handler invocations.",
		},
		[]string{"event"},
	)

	// SubscriptionsActive tracks the live subscription count per event type.
	SubscriptionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sandesh",
			Subsystem: "bus",
			Name:      "subscriptions_active",
			Help:      "Current number of subscriptions.",
		},
		[]string{"event"},
	)

	// DuplicateRejections counts subscribe attempts rejected because the
	// handler identity was already registered.
	DuplicateRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sandesh",
			Subsystem: "bus",
			Name:      "duplicate_rejections_total",
			Help:      "Total subscriptions rejected as duplicates.",
		},
		[]string{"event"},
	)
)

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry is the Prometheus registry used by the library.
// Register your own metrics against this.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	// Go runtime metrics (GC, goroutines, memory)
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	// OS process metrics (CPU, open FDs)
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Built-in bus metrics
	DefaultRegistry.MustRegister(
		PublishTotal,
		DispatchDuration,
		HandlerInvocations,
		SubscriptionsActive,
		DuplicateRejections,
	)
}

// Register lets you add your own prometheus.Collector to the registry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// MustRegister panics if registration fails.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// ─────────────────────────────────────────────
// Custom metric constructors
// ─────────────────────────────────────────────

// NewCounter creates and registers a Counter with the given name and labels.
func NewCounter(namespace, name, help string, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
	DefaultRegistry.MustRegister(c)
	return c
}

// NewHistogram creates and registers a Histogram with the given name and labels.
func NewHistogram(namespace, name, help string, buckets []float64, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	DefaultRegistry.MustRegister(h)
	return h
}

// NewGauge creates and registers a Gauge.
func NewGauge(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
	DefaultRegistry.MustRegister(g)
	return g
}

// ─────────────────────────────────────────────
// /metrics endpoint handler
// ─────────────────────────────────────────────

// Handler returns an http.HandlerFunc that exposes the Prometheus metrics
// page. Mount it on GET /metrics in your server.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true, // enables text/plain AND OpenMetrics formats
	})
	return h.ServeHTTP
}

// ─────────────────────────────────────────────
// Helpers for bus code
// ─────────────────────────────────────────────

// RecordPublish counts one publish call for the event type.
func RecordPublish(event string) {
	PublishTotal.WithLabelValues(event).Inc()
}

// ObserveDispatch records the handler-loop duration with a simple timer:
//
//	defer metrics.ObserveDispatch("demo.OrderPlaced", time.Now())
func ObserveDispatch(event string, start time.Time) {
	DispatchDuration.WithLabelValues(event).Observe(time.Since(start).Seconds())
}

// RecordInvocation counts one handler call for the event type.
func RecordInvocation(event string) {
	HandlerInvocations.WithLabelValues(event).Inc()
}

// RecordDuplicate counts one rejected duplicate subscription.
func RecordDuplicate(event string) {
	DuplicateRejections.WithLabelValues(event).Inc()
}

// AddSubscription bumps the live subscription gauge for the event type.
func AddSubscription(event string) {
	SubscriptionsActive.WithLabelValues(event).Inc()
}

// RemoveSubscription drops the live subscription gauge for the event type.
func RemoveSubscription(event string) {
	SubscriptionsActive.WithLabelValues(event).Dec()
}

// ResetSubscriptions zeroes the subscription gauge for every event type.
func ResetSubscriptions() {
	SubscriptionsActive.Reset()
}
