package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	reviewTotal    *prometheus.CounterVec
	reviewDuration *prometheus.HistogramVec
	reviewInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	reviewTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "record_review_total",
			Help:      "Total reviewed identity records by status.",
		},
		[]string{"service", "status"},
	)
	reviewDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "record_review_duration_seconds",
			Help:      "Identity record review duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	reviewInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "record_review_in_flight",
			Help:      "Number of in-flight record reviews.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(reviewTotal, reviewDuration, reviewInFlight)

	return &WorkerMetrics{
		registry:       registry,
		service:        service,
		reviewTotal:    reviewTotal,
		reviewDuration: reviewDuration,
		reviewInFlight: reviewInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartReview() {
	m.reviewInFlight.Inc()
}

func (m *WorkerMetrics) FinishReview(duration time.Duration, err error) {
	m.reviewInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.reviewTotal.WithLabelValues(m.service, status).Inc()
	m.reviewDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}
