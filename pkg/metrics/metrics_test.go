package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObservePrediction("POSITIVE", 0.9)
	m.ObservePrediction("POSITIVE", 0.8)
	m.IncFailure("classifier_batch")
	m.AddRemoved("empty_text", 3)
	m.AddRemoved("empty_text", 0)
	m.SetValidationAccuracy(0.75)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.predictionsTotal.WithLabelValues("POSITIVE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failuresTotal.WithLabelValues("classifier_batch")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rowsRemovedTotal.WithLabelValues("empty_text")))
	assert.Equal(t, 0.75, testutil.ToFloat64(m.validationAccuracy))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePrediction("NEUTRAL", 0)
		m.IncFailure("x")
		m.ObserveBatch("ok", 1)
		m.AddRemoved("x", 1)
		m.SetValidationAccuracy(1)
		m.IncRun("analyze", "ok")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncRun("validate", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sentiment_pipeline_runs_total{mode="validate",status="ok"} 1`)
}
