// Package metrics exposes the bot's Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "guildqueue"

// Metrics holds every collector of the process. It implements the queue
// board recorder and the selection gauge.
type Metrics struct {
	reg *prometheus.Registry

	queueOps      *prometheus.CounterVec
	storeLatency  *prometheus.HistogramVec
	storeErrors   *prometheus.CounterVec
	sessionsOpen  prometheus.Gauge
	updates       *prometheus.CounterVec
	ephemeralFail prometheus.Counter
}

// New creates the metrics on a fresh registry together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		queueOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queue_operations_total",
				Help:      "queue board operations by outcome (ok, noop, rejected, store_error)",
			},
			[]string{"op", "outcome"},
		),
		storeLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_call_duration_seconds",
				Help:      "latency of tabular store calls",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"call"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "failed tabular store calls",
			},
			[]string{"call"},
		),
		sessionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "selection_sessions_open",
				Help:      "open multi-select sessions",
			},
		),
		updates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "telegram_updates_total",
				Help:      "telegram updates handled by kind",
			},
			[]string{"kind"},
		),
		ephemeralFail: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ephemeral_delete_failures_total",
				Help:      "ephemeral replies that could not be deleted",
			},
		),
	}
}

// QueueOp counts one queue board operation.
func (m *Metrics) QueueOp(op, outcome string) {
	m.queueOps.WithLabelValues(op, outcome).Inc()
}

// StoreCall observes one tabular store call.
func (m *Metrics) StoreCall(call string, took time.Duration, err error) {
	m.storeLatency.WithLabelValues(call).Observe(took.Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(call).Inc()
	}
}

// SelectionSessions sets the open sessions gauge.
func (m *Metrics) SelectionSessions(open int) {
	m.sessionsOpen.Set(float64(open))
}

// Update counts one handled telegram update.
func (m *Metrics) Update(kind string) {
	m.updates.WithLabelValues(kind).Inc()
}

// EphemeralDeleteFailed counts a failed ephemeral reply deletion.
func (m *Metrics) EphemeralDeleteFailed() {
	m.ephemeralFail.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
