package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

// PrometheusMetrics records scoring and HTTP metrics into a registry.
type PrometheusMetrics struct {
	scoresTotal        *prometheus.CounterVec
	scoreDistribution  prometheus.Histogram
	recognitionsTotal  *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

var _ ports.MetricsRecorder = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers all collectors with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		scoresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pronunciation_scores_total",
				Help: "Total number of scored pronunciation attempts",
			},
			[]string{"outcome"},
		),
		scoreDistribution: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pronunciation_score",
				Help:    "Distribution of pronunciation scores",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
		),
		recognitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pronunciation_recognition_total",
				Help: "Total number of speech recognition passes by status",
			},
			[]string{"status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "status"},
		),
		httpRequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_milliseconds",
				Help:    "HTTP request duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 14),
			},
			[]string{"path"},
		),
	}
}

// RecordScore implements ports.MetricsRecorder.
func (m *PrometheusMetrics) RecordScore(score int, passed bool) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.scoresTotal.WithLabelValues(outcome).Inc()
	m.scoreDistribution.Observe(float64(score))
}

// RecordRecognition implements ports.MetricsRecorder.
func (m *PrometheusMetrics) RecordRecognition(status string) {
	m.recognitionsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest counts a served request.
func (m *PrometheusMetrics) RecordHTTPRequest(path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.httpRequestLatency.WithLabelValues(path).Observe(float64(duration.Microseconds()) / 1000)
}
