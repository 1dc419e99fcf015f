package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ohlcv"

// Recorder holds the pipeline's collectors on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	mergeAttempted *prometheus.CounterVec
	mergeInserted  *prometheus.CounterVec
	mergeRejected  *prometheus.CounterVec
	mergeDuration  *prometheus.HistogramVec
	mergeFailures  *prometheus.CounterVec

	fetchOutcomes *prometheus.CounterVec
	stageRecords  *prometheus.GaugeVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		mergeAttempted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "rows_attempted_total",
			Help:      "Records submitted to the merge engine",
		}, []string{"mode"}),
		mergeInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "rows_inserted_total",
			Help:      "Records newly stored by the merge engine",
		}, []string{"mode"}),
		mergeRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "rows_rejected_total",
			Help:      "Records rejected by validation or the store",
		}, []string{"mode"}),
		mergeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "duration_seconds",
			Help:      "Merge call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		mergeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "failures_total",
			Help:      "Merge calls that returned an error",
		}, []string{"reason"}),

		fetchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "outcomes_total",
			Help:      "Per-symbol fetch outcomes",
		}, []string{"outcome"}),
		stageRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stage",
			Name:      "records",
			Help:      "Records produced by the last run of a stage",
		}, []string{"stage"}),
	}

	r.registry.MustRegister(
		r.mergeAttempted,
		r.mergeInserted,
		r.mergeRejected,
		r.mergeDuration,
		r.mergeFailures,
		r.fetchOutcomes,
		r.stageRecords,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Merge records the counts of one successful merge call.
func (r *Recorder) Merge(mode string, attempted, inserted, rejected int64, d time.Duration) {
	if r == nil {
		return
	}
	r.mergeAttempted.WithLabelValues(mode).Add(float64(attempted))
	r.mergeInserted.WithLabelValues(mode).Add(float64(inserted))
	r.mergeRejected.WithLabelValues(mode).Add(float64(rejected))
	r.mergeDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// MergeFailed counts a merge call that returned an error.
func (r *Recorder) MergeFailed(reason string) {
	if r == nil {
		return
	}
	r.mergeFailures.WithLabelValues(reason).Inc()
}

// FetchOutcome counts one symbol fetch by outcome name.
func (r *Recorder) FetchOutcome(outcome string) {
	if r == nil {
		return
	}
	r.fetchOutcomes.WithLabelValues(outcome).Inc()
}

// StageRecords sets the number of records a stage produced.
func (r *Recorder) StageRecords(stage string, n int) {
	if r == nil {
		return
	}
	r.stageRecords.WithLabelValues(stage).Set(float64(n))
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
