package service

import (
	"testing"

	"sentiment-lens/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labeledRows(truth, pred []model.Sentiment, conf []float64) []model.Row {
	rows := make([]model.Row, len(truth))
	for i := range truth {
		rows[i] = model.Row{
			Index:              i,
			Text:               "row",
			TrueSentiment:      truth[i],
			PredictedSentiment: pred[i],
		}
		if conf != nil {
			rows[i].ConfidenceScore = conf[i]
		}
	}
	return rows
}

const (
	pos = model.SentimentPositive
	neu = model.SentimentNeutral
	neg = model.SentimentNegative
)

func TestEvaluateScenario(t *testing.T) {
	rows := labeledRows(
		[]model.Sentiment{pos, pos, neg},
		[]model.Sentiment{pos, neg, neg},
		[]float64{0.9, 0.6, 0.8},
	)

	report, err := NewValidationEngine(10).Evaluate(rows)
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3.0, report.Accuracy, 1e-9)
	assert.Equal(t, 1, report.ConfusionMatrix.At(pos, pos))
	assert.Equal(t, 1, report.ConfusionMatrix.At(pos, neg))
	assert.Equal(t, 1, report.ConfusionMatrix.At(neg, neg))
	assert.Equal(t, 3, report.ConfusionMatrix.Total())
	for _, truth := range model.SentimentLabels {
		for _, pred := range model.SentimentLabels {
			if (truth == pos && pred == pos) || (truth == pos && pred == neg) || (truth == neg && pred == neg) {
				continue
			}
			assert.Zero(t, report.ConfusionMatrix.At(truth, pred), "%s/%s", truth, pred)
		}
	}

	// POSITIVE: p=1, r=0.5; NEGATIVE: p=0.5, r=1; 权重 2:1
	assert.InDelta(t, 2.5/3.0, report.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, report.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, report.F1Score, 1e-9)

	assert.Equal(t, 3, report.TotalSamples)
	assert.Equal(t, 2, report.CorrectPredictions)
	assert.Equal(t, 1, report.WrongPredictions)
	assert.InDelta(t, 1.0/3.0, report.ErrorRate, 1e-9)

	assert.InDelta(t, 2.3/3.0, report.AvgConfidence, 1e-9)
	assert.InDelta(t, 0.85, report.CorrectConfidence, 1e-9)
	assert.InDelta(t, 0.6, report.ErrorConfidence, 1e-9)

	assert.Equal(t, map[model.Sentiment]model.ClassMetrics{
		pos: {Count: 2, Correct: 1, Accuracy: 0.5},
		neg: {Count: 1, Correct: 1, Accuracy: 1},
	}, report.ClassMetrics)

	require.Len(t, report.SampleErrors, 1)
	assert.Equal(t, model.ErrorRow{
		Index:              1,
		Text:               "row",
		TrueSentiment:      pos,
		PredictedSentiment: neg,
		ConfidenceScore:    0.6,
	}, report.SampleErrors[0])
	assert.Equal(t, model.SentimentLabels, report.ConfusionLabels)
}

func TestEvaluateConfusionRowSumsMatchSupport(t *testing.T) {
	truth := []model.Sentiment{pos, neu, neg, neu, pos, neg, neg, pos}
	pred := []model.Sentiment{neu, neu, pos, neg, pos, neg, neu, pos}

	report, err := NewValidationEngine(10).Evaluate(labeledRows(truth, pred, nil))
	require.NoError(t, err)

	assert.Equal(t, len(truth), report.ConfusionMatrix.Total())
	for _, label := range model.SentimentLabels {
		assert.Equal(t, report.ClassMetrics[label].Count, report.ConfusionMatrix.RowSum(label))
	}
	assert.Equal(t, 3, report.ConfusionMatrix.ColSum(neu))
}

func TestEvaluateNoErrors(t *testing.T) {
	rows := labeledRows(
		[]model.Sentiment{pos, neu},
		[]model.Sentiment{pos, neu},
		[]float64{0.9, 0.7},
	)
	report, err := NewValidationEngine(10).Evaluate(rows)
	require.NoError(t, err)

	assert.Equal(t, 1.0, report.Accuracy)
	assert.Equal(t, 0.0, report.ErrorConfidence)
	assert.Equal(t, 0.0, report.ErrorRate)
	assert.Empty(t, report.SampleErrors)
	assert.NotContains(t, report.ClassMetrics, neg)
}

func TestEvaluateNoGroundTruth(t *testing.T) {
	rows := labeledRows(
		[]model.Sentiment{model.SentimentAbsent, model.SentimentAbsent},
		[]model.Sentiment{pos, neg},
		nil,
	)
	_, err := NewValidationEngine(10).Evaluate(rows)
	assert.ErrorIs(t, err, model.ErrNoGroundTruth)

	_, err = NewValidationEngine(10).Evaluate(nil)
	assert.ErrorIs(t, err, model.ErrNoGroundTruth)
}

func TestEvaluateSkipsRowsWithoutTruth(t *testing.T) {
	rows := labeledRows(
		[]model.Sentiment{pos, model.SentimentAbsent, neg},
		[]model.Sentiment{pos, neg, pos},
		nil,
	)
	report, err := NewValidationEngine(10).Evaluate(rows)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalSamples)
	assert.Equal(t, 2, report.ConfusionMatrix.Total())
}

func TestEvaluateErrorSampleKeepsInputOrder(t *testing.T) {
	n := 15
	truth := make([]model.Sentiment, n)
	pred := make([]model.Sentiment, n)
	conf := make([]float64, n)
	for i := 0; i < n; i++ {
		truth[i], pred[i] = pos, neg
		conf[i] = float64(n-i) / 100
	}

	report, err := NewValidationEngine(10).Evaluate(labeledRows(truth, pred, conf))
	require.NoError(t, err)
	require.Len(t, report.SampleErrors, 10)
	for i, e := range report.SampleErrors {
		assert.Equal(t, i, e.Index)
	}
	assert.Equal(t, 0.0, report.Precision)
}

func TestClassificationReportText(t *testing.T) {
	rows := labeledRows(
		[]model.Sentiment{pos, pos, neg},
		[]model.Sentiment{pos, neg, neg},
		nil,
	)
	report, err := NewValidationEngine(10).Evaluate(rows)
	require.NoError(t, err)

	text := report.ClassificationReport
	assert.Contains(t, text, "precision    recall  f1-score   support")
	assert.Contains(t, text, "    POSITIVE     1.0000    0.5000    0.6667         2\n")
	assert.Contains(t, text, "    NEGATIVE     0.5000    1.0000    0.6667         1\n")
	assert.Contains(t, text, "    accuracy                         0.6667         3\n")
	assert.Contains(t, text, "weighted avg     0.8333    0.6667    0.6667         3\n")
	// 真实与预测中都没有出现的类别不列出
	assert.NotContains(t, text, "NEUTRAL")
}
