// Package metrics exposes Prometheus counters for calculations and template
// operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "tips_"

	ResultSuccess = "success"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics holds the engine and template collectors. A nil *Metrics records
// nothing, so callers never need to check.
type Metrics struct {
	gatherer prometheus.Gatherer

	calculations        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	violations          *prometheus.CounterVec
	templateOps         *prometheus.CounterVec
}

// New registers the collectors with reg. Passing nil uses a fresh registry,
// which is what tests want.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculations_total",
				Help: "Total tip calculations by scenario and result",
			},
			[]string{"scenario", "result"},
		),
		calculationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculation_duration_seconds",
				Help:    "Tip calculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scenario"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "consistency_violations_total",
				Help: "Result consistency check failures by kind",
			},
			[]string{"kind"},
		),
		templateOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "template_operations_total",
				Help: "Template store operations by operation and result",
			},
			[]string{"op", "result"},
		),
	}
	reg.MustRegister(m.calculations, m.calculationDuration, m.violations, m.templateOps)
	return m
}

// NewDefault registers with a registry that also carries the Go runtime and
// process collectors.
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

// ObserveCalculation records one calculation.
func (m *Metrics) ObserveCalculation(scenario, result string, duration time.Duration) {
	if m == nil {
		return
	}
	if scenario == "" {
		scenario = "unknown"
	}
	m.calculations.WithLabelValues(scenario, result).Inc()
	m.calculationDuration.WithLabelValues(scenario).Observe(duration.Seconds())
}

// AddViolation counts a consistency check failure.
func (m *Metrics) AddViolation(kind string) {
	if m == nil || kind == "" {
		return
	}
	m.violations.WithLabelValues(kind).Inc()
}

// IncTemplateOp counts a template operation.
func (m *Metrics) IncTemplateOp(op, result string) {
	if m == nil || op == "" {
		return
	}
	m.templateOps.WithLabelValues(op, result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
