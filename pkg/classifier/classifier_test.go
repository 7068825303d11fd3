package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sentiment-lens/config"
	"sentiment-lens/pkg/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapNativeLabel(t *testing.T) {
	tests := []struct {
		native string
		want   model.Sentiment
	}{
		{"LABEL_0", model.SentimentNegative},
		{"LABEL_1", model.SentimentNeutral},
		{"LABEL_2", model.SentimentPositive},
		{"negative", model.SentimentNegative},
		{"neutral", model.SentimentNeutral},
		{"positive", model.SentimentPositive},
		{"Positive", model.SentimentPositive},
		{"joy", model.Sentiment("JOY")},
	}
	for _, tt := range tests {
		t.Run(tt.native, func(t *testing.T) {
			assert.Equal(t, tt.want, MapNativeLabel(tt.native))
		})
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(&config.ClassifierConfig{Provider: "bert"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrClassifierUnavailable))

	_, err = New(nil)
	assert.True(t, errors.Is(err, model.ErrClassifierUnavailable))
}

func newTritonServer(t *testing.T, handler func(req tritonRequest) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/models/sentiment/infer", r.URL.Path)
		var req tritonRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		status, body := handler(req)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func tritonConfig(baseURL string) *config.TritonConfig {
	cfg := config.NewDefaultClassifierConfig().Triton
	cfg.BaseURL = baseURL
	cfg.Model = "sentiment"
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestTritonClassifier_LabelAndScoreOutputs(t *testing.T) {
	srv := newTritonServer(t, func(req tritonRequest) (int, any) {
		if assert.Len(t, req.Inputs, 1) {
			assert.Equal(t, "BYTES", req.Inputs[0].DataType)
			assert.Equal(t, []int{2, 1}, req.Inputs[0].Shape)
		}
		return http.StatusOK, map[string]any{
			"model_name": "sentiment",
			"outputs": []map[string]any{
				{"name": "LABEL", "datatype": "BYTES", "shape": []int{2}, "data": []string{"positive", "negative"}},
				{"name": "SCORE", "datatype": "FP32", "shape": []int{2}, "data": []float64{0.91, 0.62}},
			},
		}
	})

	c, err := NewTritonClassifier(tritonConfig(srv.URL))
	require.NoError(t, err)

	preds, err := c.ClassifyBatch(context.Background(), []string{"love it", "hate it"})
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, Prediction{Label: "positive", Score: 0.91}, preds[0])
	assert.Equal(t, Prediction{Label: "negative", Score: 0.62}, preds[1])
}

func TestTritonClassifier_ProbabilityVector(t *testing.T) {
	srv := newTritonServer(t, func(req tritonRequest) (int, any) {
		return http.StatusOK, map[string]any{
			"outputs": []map[string]any{
				{"name": "SCORE", "datatype": "FP32", "shape": []int{1, 3}, "data": []float64{0.1, 0.2, 0.7}},
			},
		}
	})
	cfg := tritonConfig(srv.URL)
	cfg.Labels = []string{"LABEL_0", "LABEL_1", "LABEL_2"}
	c, err := NewTritonClassifier(cfg)
	require.NoError(t, err)

	pred, err := c.Classify(context.Background(), "fine")
	require.NoError(t, err)
	assert.Equal(t, "LABEL_2", pred.Label)
	assert.InDelta(t, 0.7, pred.Score, 1e-9)
}

func TestTritonClassifier_ServerError(t *testing.T) {
	srv := newTritonServer(t, func(req tritonRequest) (int, any) {
		return http.StatusInternalServerError, map[string]string{"error": "model not ready"}
	})
	c, err := NewTritonClassifier(tritonConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.ClassifyBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestTritonClassifier_LengthMismatch(t *testing.T) {
	srv := newTritonServer(t, func(req tritonRequest) (int, any) {
		return http.StatusOK, map[string]any{
			"outputs": []map[string]any{
				{"name": "LABEL", "data": []string{"positive"}},
				{"name": "SCORE", "data": []float64{0.9}},
			},
		}
	})
	c, err := NewTritonClassifier(tritonConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.ClassifyBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestParseAnthropicResponse(t *testing.T) {
	preds, err := parseAnthropicResponse("```json\n[{\"id\":0,\"label\":\"positive\",\"score\":0.9},{\"id\":2,\"label\":\"negative\",\"score\":0.8},{\"id\":7,\"label\":\"neutral\",\"score\":0.5}]\n```", 3)
	require.NoError(t, err)
	require.Len(t, preds, 3)

	assert.Equal(t, "positive", preds[0].Label)
	assert.NoError(t, preds[0].Err)
	assert.Error(t, preds[1].Err, "missing id must be reported per item")
	assert.Equal(t, "negative", preds[2].Label)
	assert.InDelta(t, 0.8, preds[2].Score, 1e-9)
}

func TestParseAnthropicResponse_Invalid(t *testing.T) {
	_, err := parseAnthropicResponse("not json", 1)
	assert.Error(t, err)
}

func TestBuildAnthropicUserPrompt_FlattensNewlines(t *testing.T) {
	prompt := buildAnthropicUserPrompt([]string{"line one\nline two", "ok"})
	assert.Contains(t, prompt, "ID:0 - line one line two\n")
	assert.Contains(t, prompt, "ID:1 - ok\n")
}
