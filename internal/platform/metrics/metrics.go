package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	CandidatesCreated prometheus.Counter
	RunsCompleted     *prometheus.CounterVec
	ChecksCompleted   *prometheus.CounterVec
	CheckLatency      *prometheus.HistogramVec
	RunDuration       prometheus.Histogram
	JobsEnqueued      prometheus.Counter
	JobsFailed        prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		CandidatesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vetgate_candidates_created_total",
			Help: "Total number of candidates created in the system",
		}),
		RunsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vetgate_verification_runs_total",
			Help: "Completed verification runs by resulting traffic light",
		}, []string{"traffic_light"}),
		ChecksCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vetgate_verification_checks_total",
			Help: "Individual check outcomes by check type and status",
		}, []string{"check_type", "status"}),
		CheckLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vetgate_verification_check_latency_seconds",
			Help:    "Per-check provider latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"check_type"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vetgate_verification_run_duration_seconds",
			Help:    "Wall-clock duration of full tier-1 verification runs",
			Buckets: prometheus.DefBuckets,
		}),
		JobsEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vetgate_verification_jobs_enqueued_total",
			Help: "Verification jobs accepted onto the queue",
		}),
		JobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vetgate_verification_jobs_failed_total",
			Help: "Verification jobs that exhausted their retries",
		}),
	}
}

// IncrementCandidatesCreated increments the candidates created counter by 1
func (m *Metrics) IncrementCandidatesCreated() {
	m.CandidatesCreated.Inc()
}

// ObserveRun records one completed verification run
func (m *Metrics) ObserveRun(trafficLight string, duration time.Duration) {
	m.RunsCompleted.WithLabelValues(trafficLight).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// ObserveCheck records one individual check outcome and its provider latency
func (m *Metrics) ObserveCheck(checkType, status string, latency time.Duration) {
	m.ChecksCompleted.WithLabelValues(checkType, status).Inc()
	m.CheckLatency.WithLabelValues(checkType).Observe(latency.Seconds())
}
