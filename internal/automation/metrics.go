package automation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cashbox/internal/model"
)

// Metrics holds Prometheus metrics for the automation engine.
type Metrics struct {
	// OperationsTotal counts evaluated register actions by kind and outcome.
	OperationsTotal *prometheus.CounterVec

	// TickDuration is the time spent processing one scheduler tick.
	TickDuration prometheus.Histogram

	// ClientsChecked is the number of merchants seen on the last tick.
	ClientsChecked prometheus.Gauge

	// DedupSuppressed counts matches skipped by the execution guard.
	DedupSuppressed prometheus.Counter

	// InFlightSkipped counts merchants skipped because their previous tick
	// was still being processed.
	InFlightSkipped prometheus.Counter

	// ReportFailures counts best-effort report generations that failed.
	ReportFailures prometheus.Counter

	// LastTickTimestamp is the unix time of the last completed tick.
	LastTickTimestamp prometheus.Gauge
}

// NewMetrics creates and registers Prometheus metrics for the engine.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Automated register operations by type and status",
			},
			[]string{"operation", "status"},
		),

		TickDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Time spent processing one scheduler tick",
				Buckets:   []float64{.05, .1, .5, 1, 5, 15, 30},
			},
		),

		ClientsChecked: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "clients_checked",
				Help:      "Merchants evaluated on the last tick",
			},
		),

		DedupSuppressed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dedup_suppressed_total",
				Help:      "Matched operations suppressed by the execution guard",
			},
		),

		InFlightSkipped: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "in_flight_skipped_total",
				Help:      "Merchant evaluations skipped because the previous tick was still running",
			},
		),

		ReportFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_failures_total",
				Help:      "Daily report generations that failed after a close",
			},
		),

		LastTickTimestamp: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_tick_timestamp_seconds",
				Help:      "Unix time of the last completed scheduler tick",
			},
		),
	}
}

// IncOperation increments the operation counter for a kind and outcome.
func (m *Metrics) IncOperation(opType model.OperationType, status model.OperationStatus) {
	m.OperationsTotal.WithLabelValues(string(opType), string(status)).Inc()
}

// ObserveTick records the duration of a completed tick.
func (m *Metrics) ObserveTick(seconds float64) {
	m.TickDuration.Observe(seconds)
}

// IncDedupSuppressed increments the guard suppression counter.
func (m *Metrics) IncDedupSuppressed() {
	m.DedupSuppressed.Inc()
}

// IncInFlightSkipped increments the overlap-skip counter.
func (m *Metrics) IncInFlightSkipped() {
	m.InFlightSkipped.Inc()
}

// IncReportFailure increments the report failure counter.
func (m *Metrics) IncReportFailure() {
	m.ReportFailures.Inc()
}
