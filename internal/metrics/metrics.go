package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ReportOK         = "ok"
	ReportImageError = "image_error"
	ReportError      = "error"
)

// Metrics holds the application's Prometheus collectors. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	framesProcessed prometheus.Counter
	detectErrors    prometheus.Counter
	inferenceTime   prometheus.Histogram
	detections      *prometheus.CounterVec
	sessions        *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	reports         *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "detectdemo_frames_processed_total",
			Help: "Total frames passed through the detector",
		}),
		detectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "detectdemo_detect_errors_total",
			Help: "Total frames whose inference failed",
		}),
		inferenceTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "detectdemo_inference_seconds",
			Help:    "Detector latency per frame",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "detectdemo_detections_total",
			Help: "Detections per class label",
		}, []string{"label"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "detectdemo_sessions_total",
			Help: "Sessions started per media kind",
		}, []string{"kind"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "detectdemo_sessions_processing",
			Help: "Sessions currently running the frame loop",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "detectdemo_reports_total",
			Help: "Report generation attempts per result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.framesProcessed,
		m.detectErrors,
		m.inferenceTime,
		m.detections,
		m.sessions,
		m.activeSessions,
		m.reports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFrame(latency time.Duration, err error) {
	if m == nil {
		return
	}
	m.framesProcessed.Inc()
	m.inferenceTime.Observe(latency.Seconds())
	if err != nil {
		m.detectErrors.Inc()
	}
}

func (m *Metrics) AddDetections(label string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.detections.WithLabelValues(label).Add(float64(n))
}

func (m *Metrics) SessionStarted(kind string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(kind).Inc()
	m.activeSessions.Inc()
}

func (m *Metrics) SessionStopped() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *Metrics) ReportResult(result string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(result).Inc()
}
