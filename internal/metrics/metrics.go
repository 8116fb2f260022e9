package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder tracks run metrics on its own registry so every batch starts clean.
type Recorder struct {
	registry *prometheus.Registry

	// ItemsTotal counts finished work items by status.
	ItemsTotal *prometheus.CounterVec
	// StepAttempts counts step attempts by step and outcome (ok, error).
	StepAttempts *prometheus.CounterVec
	// StepDuration observes the wall time of each step, retries included.
	StepDuration *prometheus.HistogramVec
	// BatchDuration is the wall time of the last batch.
	BatchDuration prometheus.Gauge
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpa_items_total",
				Help: "Total number of work items processed",
			},
			[]string{"status"},
		),
		StepAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpa_step_attempts_total",
				Help: "Total number of step attempts",
			},
			[]string{"step", "outcome"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rpa_step_duration_seconds",
				Help:    "Step duration in seconds, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		BatchDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rpa_batch_duration_seconds",
				Help: "Duration of the last batch run in seconds",
			},
		),
	}
	r.registry.MustRegister(r.ItemsTotal, r.StepAttempts, r.StepDuration, r.BatchDuration)
	return r
}

// ObserveAttempt records one attempt of step.
func (r *Recorder) ObserveAttempt(step string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.StepAttempts.WithLabelValues(step, outcome).Inc()
}

// ObserveStep records the total time spent in step.
func (r *Recorder) ObserveStep(step string, d time.Duration) {
	r.StepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// ObserveItem records a finished work item.
func (r *Recorder) ObserveItem(status string) {
	r.ItemsTotal.WithLabelValues(status).Inc()
}

// ObserveBatch records the batch wall time.
func (r *Recorder) ObserveBatch(d time.Duration) {
	r.BatchDuration.Set(d.Seconds())
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry in Prometheus text format, for the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
