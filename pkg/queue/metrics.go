package queue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds prometheus collectors for worker outcomes. A nil *Metrics is
// a valid no-op, so workers can run without a registry in tests.
type Metrics struct {
	processed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates worker metrics and registers them on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_jobs_processed_total",
			Help: "Number of processed jobs by queue and outcome.",
		}, []string{"queue", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "queue_job_duration_seconds",
			Help:    "Job handler execution time by queue.",
			Buckets: prometheus.DefBuckets,
		}, []string{"queue"}),
	}

	if reg != nil {
		reg.MustRegister(m.processed, m.duration)
	}

	return m
}

func (m *Metrics) observe(queue, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(queue, status).Inc()
	m.duration.WithLabelValues(queue).Observe(d.Seconds())
}
