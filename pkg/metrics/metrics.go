package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 流水线的 prometheus 指标，使用独立的 Registry，避免重复注册
type Metrics struct {
	registry *prometheus.Registry

	predictionsTotal    *prometheus.CounterVec
	failuresTotal       *prometheus.CounterVec
	batchDuration       *prometheus.HistogramVec
	confidenceHistogram *prometheus.HistogramVec
	rowsRemovedTotal    *prometheus.CounterVec
	validationAccuracy  prometheus.Gauge
	runsTotal           *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_predictions_total",
				Help: "Total number of rows classified, by final label",
			},
			[]string{"label"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_recoverable_failures_total",
				Help: "Total number of recovered per-item failures, by kind",
			},
			[]string{"kind"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentiment_classifier_batch_duration_seconds",
				Help:    "Time taken by a single classifier batch call",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"status"},
		),
		confidenceHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentiment_confidence_distribution",
				Help:    "Distribution of classifier confidence scores by final label",
				Buckets: []float64{0.1, 0.3, 0.5, 0.55, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
			},
			[]string{"label"},
		),
		rowsRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_rows_removed_total",
				Help: "Rows dropped before classification, by reason",
			},
			[]string{"reason"},
		),
		validationAccuracy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentiment_validation_accuracy",
				Help: "Accuracy of the most recent validation run",
			},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_pipeline_runs_total",
				Help: "Pipeline runs, by mode and status",
			},
			[]string{"mode", "status"},
		),
	}

	m.registry.MustRegister(
		m.predictionsTotal,
		m.failuresTotal,
		m.batchDuration,
		m.confidenceHistogram,
		m.rowsRemovedTotal,
		m.validationAccuracy,
		m.runsTotal,
	)
	return m
}

// 以下方法允许 nil 接收者，未配置指标时调用方无需判空

func (m *Metrics) ObservePrediction(label string, confidence float64) {
	if m == nil {
		return
	}
	m.predictionsTotal.WithLabelValues(label).Inc()
	m.confidenceHistogram.WithLabelValues(label).Observe(confidence)
}

func (m *Metrics) IncFailure(kind string) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveBatch(status string, seconds float64) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(status).Observe(seconds)
}

func (m *Metrics) AddRemoved(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsRemovedTotal.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) SetValidationAccuracy(accuracy float64) {
	if m == nil {
		return
	}
	m.validationAccuracy.Set(accuracy)
}

func (m *Metrics) IncRun(mode, status string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(mode, status).Inc()
}

// Registry 供测试读取指标
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
