package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects generation pipeline observability. Background task
// failures must be visible somewhere other than a log line scrolling by.
type Metrics struct {
	GenerationTotal    *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	SubmissionsTotal   prometheus.Counter
}

// NewMetrics registers the collectors on the given registerer. Pass a fresh
// prometheus.NewRegistry in tests to avoid global registration conflicts.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GenerationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quizforge_generation_total",
			Help: "Quiz generation outcomes by terminal status.",
		}, []string{"status"}),
		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "quizforge_generation_duration_seconds",
			Help:    "Wall time of one generation job from claim to terminal status.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		SubmissionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "quizforge_submissions_total",
			Help: "Accepted quiz submissions.",
		}),
	}
}
