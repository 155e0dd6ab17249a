// Package metrics records operation counters for kitforge and exports them
// in the Prometheus text format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "kitforge"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNoop    = "noop"
)

// Recorder holds kitforge metrics on a private registry. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	// operations counts lifecycle operations by operation, kind, and outcome.
	operations *prometheus.CounterVec
	// duration tracks how long lifecycle operations take.
	duration *prometheus.HistogramVec
	// externalFailures counts tolerated collaborator failures.
	externalFailures *prometheus.CounterVec
	buildInfo        *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of lifecycle operations",
			},
			[]string{"operation", "kind", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Lifecycle operation duration in seconds",
				Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
		externalFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_failures_total",
				Help:      "Total number of tolerated external collaborator failures",
			},
			[]string{"collaborator"},
		),
		buildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_info",
				Help:      "Build information",
			},
			[]string{"version", "commit"},
		),
	}
}

// SetBuildInfo sets the build information gauge.
func (r *Recorder) SetBuildInfo(version, commit string) {
	if r == nil {
		return
	}
	r.buildInfo.WithLabelValues(version, commit).Set(1)
}

// ObserveOperation records one finished operation.
func (r *Recorder) ObserveOperation(operation, kind, outcome string, took time.Duration) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, kind, outcome).Inc()
	r.duration.WithLabelValues(operation).Observe(took.Seconds())
}

// ExternalFailure records a tolerated failure of an external collaborator.
func (r *Recorder) ExternalFailure(collaborator string) {
	if r == nil {
		return
	}
	r.externalFailures.WithLabelValues(collaborator).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
