package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "onboarding"

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	ocrCallsTotal          *prometheus.CounterVec
	ocrCacheLookupsTotal   *prometheus.CounterVec
	extractionMissing      prometheus.Histogram
	chatRepliesTotal       *prometheus.CounterVec
	recommendationsTotal   *prometheus.CounterVec
	breakerTransitionTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: constLabels,
		},
	)
	ocrCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "ocr",
			Name:        "calls_total",
			Help:        "OCR provider calls by language and outcome status.",
			ConstLabels: constLabels,
		},
		[]string{"language", "status"},
	)
	ocrCacheLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "ocr",
			Name:        "cache_lookups_total",
			Help:        "OCR result cache lookups by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"},
	)
	extractionMissing := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "extraction",
			Name:        "missing_fields",
			Help:        "Distribution of missing identity fields per upload batch.",
			Buckets:     []float64{0, 1, 2, 3, 5, 8, 13},
			ConstLabels: constLabels,
		},
	)
	chatRepliesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "chat",
			Name:        "replies_total",
			Help:        "Chat replies by source.",
			ConstLabels: constLabels,
		},
		[]string{"source"},
	)
	recommendationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "recommend",
			Name:        "recommendations_total",
			Help:        "Recommendations by normalised place and outcome.",
			ConstLabels: constLabels,
		},
		[]string{"place", "outcome"},
	)
	breakerTransitionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "resilience",
			Name:        "breaker_transitions_total",
			Help:        "Circuit breaker state transitions by operation.",
			ConstLabels: constLabels,
		},
		[]string{"operation", "to"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		ocrCallsTotal,
		ocrCacheLookupsTotal,
		extractionMissing,
		chatRepliesTotal,
		recommendationsTotal,
		breakerTransitionTotal,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		service:                service,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		ocrCallsTotal:          ocrCallsTotal,
		ocrCacheLookupsTotal:   ocrCacheLookupsTotal,
		extractionMissing:      extractionMissing,
		chatRepliesTotal:       chatRepliesTotal,
		recommendationsTotal:   recommendationsTotal,
		breakerTransitionTotal: breakerTransitionTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := NormalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// NormalizePath collapses session and record ids so label cardinality stays bounded.
func NormalizePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 || parts[0] != "v1" {
		return path
	}
	switch parts[1] {
	case "sessions":
		parts[2] = "{session_id}"
	case "chat":
		parts[2] = "{session_id}"
	case "records":
		parts[2] = "{record_id}"
	default:
		return path
	}
	return "/" + strings.Join(parts, "/")
}

func (m *HTTPServerMetrics) RecordOCRCall(language, status string) {
	if language == "" {
		language = "unknown"
	}
	m.ocrCallsTotal.WithLabelValues(language, status).Inc()
}

func (m *HTTPServerMetrics) RecordOCRCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ocrCacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *HTTPServerMetrics) ObserveMissingFields(count int) {
	if count < 0 {
		return
	}
	m.extractionMissing.Observe(float64(count))
}

func (m *HTTPServerMetrics) RecordChatReply(source string) {
	if source == "" {
		source = "unknown"
	}
	m.chatRepliesTotal.WithLabelValues(source).Inc()
}

// RecordRecommendation counts one recommendation; outcome is "products" or "message".
func (m *HTTPServerMetrics) RecordRecommendation(place, outcome string) {
	if place == "" {
		place = "unknown"
	}
	m.recommendationsTotal.WithLabelValues(place, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordBreakerTransition(operation, _, to string) {
	m.breakerTransitionTotal.WithLabelValues(operation, to).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
