package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"sentiment-lens/pkg/classifier"
	"sentiment-lens/pkg/metrics"
	"sentiment-lens/pkg/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultThresholds = Thresholds{Low: 0.55, High: 0.70}

func newTestOrchestrator(c classifier.Classifier, batchSize int) *ClassificationOrchestrator {
	return NewClassificationOrchestrator(c, nil, metrics.New(), OrchestratorOptions{
		BatchSize:     batchSize,
		MaxInputChars: 512,
		Concurrency:   1,
		Thresholds:    defaultThresholds,
	})
}

func TestClassifyScenario(t *testing.T) {
	fake := newFakeClassifier(map[string]classifier.Prediction{
		"I love this!":     {Label: "POSITIVE", Score: 0.9},
		"terrible product": {Label: "NEGATIVE", Score: 0.6},
	})
	o := newTestOrchestrator(fake, 16)

	got := o.ClassifyTexts(context.Background(), []string{"I love this!", "", "terrible product"}, false)
	assert.Equal(t, []model.ClassificationResult{
		{Label: model.SentimentPositive, Confidence: 0.9},
		{Label: model.SentimentNeutral, Confidence: 0.0},
		{Label: model.SentimentNegative, Confidence: 0.6},
	}, got)
	assert.NotContains(t, fake.seen(), "")
}

func TestClassifyAllEmpty(t *testing.T) {
	fake := newFakeClassifier(nil)
	o := newTestOrchestrator(fake, 2)

	outcomes := o.Classify(context.Background(), []string{"", "  ", "\t\n", ""}, false)
	require.Len(t, outcomes, 4)
	for i, out := range outcomes {
		assert.Equal(t, model.DegradedResult, out.Resolve())
		require.NotNil(t, out.Failure)
		assert.Equal(t, model.FailureEmptyInput, out.Failure.Kind)
		assert.Equal(t, i, out.Failure.Index)
	}
	assert.Equal(t, 0, fake.callCount())
	assert.Empty(t, o.Classify(context.Background(), nil, false))
}

func TestApplyConfidencePolicy(t *testing.T) {
	for _, score := range []float64{0, 0.1, 0.3, 0.54, 0.5499999} {
		for _, label := range model.SentimentLabels {
			assert.Equal(t, model.SentimentNeutral, ApplyConfidencePolicy(label, score, defaultThresholds), "score %v", score)
		}
	}
	// [0.55, 0.70) 与高置信度区间都保留原标签
	for _, score := range []float64{0.55, 0.6, 0.69, 0.70, 0.9, 1.0} {
		for _, label := range model.SentimentLabels {
			assert.Equal(t, label, ApplyConfidencePolicy(label, score, defaultThresholds), "score %v", score)
		}
	}
}

func TestClassifyKeepsRawConfidence(t *testing.T) {
	fake := newFakeClassifier(map[string]classifier.Prediction{
		"meh":   {Label: "LABEL_2", Score: 0.41},
		"great": {Label: "LABEL_2", Score: 0.98},
		"fine":  {Label: "LABEL_0", Score: 0.62},
	})
	o := newTestOrchestrator(fake, 16)

	got := o.ClassifyTexts(context.Background(), []string{"meh", "great", "fine"}, false)
	assert.Equal(t, model.ClassificationResult{Label: model.SentimentNeutral, Confidence: 0.41}, got[0])
	assert.Equal(t, model.ClassificationResult{Label: model.SentimentPositive, Confidence: 0.98}, got[1])
	assert.Equal(t, model.ClassificationResult{Label: model.SentimentNegative, Confidence: 0.62}, got[2])
}

func TestClassifyBatchFailureDegradesOnlyThatBatch(t *testing.T) {
	fake := newFakeClassifier(map[string]classifier.Prediction{
		"a": {Label: "positive", Score: 0.9},
		"e": {Label: "negative", Score: 0.8},
	})
	fake.batchErr = func(texts []string) error {
		for _, t := range texts {
			if t == "boom" {
				return errors.New("model crashed")
			}
		}
		return nil
	}
	o := newTestOrchestrator(fake, 2)

	outcomes := o.Classify(context.Background(), []string{"a", "b", "boom", "d", "e"}, false)
	require.Len(t, outcomes, 5)
	assert.Equal(t, model.SentimentPositive, outcomes[0].Resolve().Label)
	assert.Nil(t, outcomes[1].Failure)
	for _, i := range []int{2, 3} {
		require.NotNil(t, outcomes[i].Failure)
		assert.Equal(t, model.FailureClassifierBatch, outcomes[i].Failure.Kind)
		assert.Equal(t, i, outcomes[i].Failure.Index)
		assert.Equal(t, model.DegradedResult, outcomes[i].Resolve())
	}
	assert.Equal(t, model.ClassificationResult{Label: model.SentimentNegative, Confidence: 0.8}, outcomes[4].Resolve())
}

func TestClassifyItemFailures(t *testing.T) {
	fake := newFakeClassifier(map[string]classifier.Prediction{
		"bad item":  {Err: errors.New("tokenizer error")},
		"odd label": {Label: "LABEL_9", Score: 0.9},
		"bad score": {Label: "positive", Score: 1.7},
		"good":      {Label: "positive", Score: 0.9},
	})
	o := newTestOrchestrator(fake, 16)

	outcomes := o.Classify(context.Background(), []string{"bad item", "odd label", "bad score", "good"}, false)
	assert.Equal(t, model.FailureClassifierItem, outcomes[0].Failure.Kind)
	assert.Equal(t, model.FailureUnmappedLabel, outcomes[1].Failure.Kind)
	assert.Equal(t, model.FailureClassifierItem, outcomes[2].Failure.Kind)
	assert.Nil(t, outcomes[3].Failure)
	for _, i := range []int{0, 2} {
		assert.Equal(t, model.DegradedResult, outcomes[i].Resolve())
	}
	// 未知标签判为 NEUTRAL，但保留原始分数
	assert.Equal(t, model.ClassificationResult{Label: model.SentimentNeutral, Confidence: 0.9}, outcomes[1].Resolve())
}

type shortClassifier struct{ fakeClassifier }

func (s *shortClassifier) ClassifyBatch(_ context.Context, texts []string) ([]classifier.Prediction, error) {
	return make([]classifier.Prediction, len(texts)-1), nil
}

func TestClassifyLengthMismatchIsBatchFailure(t *testing.T) {
	o := newTestOrchestrator(&shortClassifier{}, 16)

	outcomes := o.Classify(context.Background(), []string{"one", "two"}, false)
	for _, out := range outcomes {
		require.NotNil(t, out.Failure)
		assert.Equal(t, model.FailureClassifierBatch, out.Failure.Kind)
	}
}

func TestClassifyTruncatesInput(t *testing.T) {
	fake := newFakeClassifier(nil)
	o := newTestOrchestrator(fake, 16)

	long := strings.Repeat("é", 600)
	o.Classify(context.Background(), []string{long, "Short Text"}, false)

	seen := fake.seen()
	require.Len(t, seen, 2)
	assert.Equal(t, 512, utf8.RuneCountInString(seen[0]))
	// 分类输入使用原文，不做大小写转换
	assert.Equal(t, "Short Text", seen[1])
}

func TestClassifyBatchBoundariesDoNotAffectResults(t *testing.T) {
	results := make(map[string]classifier.Prediction)
	texts := make([]string, 37)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
		results[texts[i]] = classifier.Prediction{Label: []string{"positive", "neutral", "negative"}[i%3], Score: float64(i%10) / 10}
	}

	var baseline []model.ClassificationResult
	for _, size := range []int{1, 4, 16, 100} {
		got := newTestOrchestrator(newFakeClassifier(results), size).ClassifyTexts(context.Background(), texts, false)
		require.Len(t, got, len(texts))
		if baseline == nil {
			baseline = got
			continue
		}
		assert.Equal(t, baseline, got, "batch size %d", size)
	}
}

func TestClassifyParallelPreservesOrder(t *testing.T) {
	results := make(map[string]classifier.Prediction)
	texts := make([]string, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("row %d", i)
		results[texts[i]] = classifier.Prediction{Label: "positive", Score: 0.6 + float64(i)/1000}
	}
	o := NewClassificationOrchestrator(newFakeClassifier(results), nil, nil, OrchestratorOptions{
		BatchSize:   3,
		Concurrency: 4,
		Thresholds:  defaultThresholds,
	})

	got := o.ClassifyTexts(context.Background(), texts, false)
	require.Len(t, got, len(texts))
	for i, res := range got {
		assert.InDelta(t, 0.6+float64(i)/1000, res.Confidence, 1e-9)
	}
}

func TestClassifyWithTranslation(t *testing.T) {
	fake := newFakeClassifier(map[string]classifier.Prediction{
		"hello world": {Label: "positive", Score: 0.95},
	})
	tr := &fakeTranslator{translations: map[string]string{"hola mundo": "hello world"}}
	o := NewClassificationOrchestrator(fake, tr, metrics.New(), OrchestratorOptions{
		BatchSize:  16,
		Thresholds: defaultThresholds,
		Translation: TranslationOptions{
			Timeout:  time.Second,
			MaxChars: 512,
			MinChars: 3,
		},
	})

	outcomes := o.Classify(context.Background(), []string{"hola mundo", "sin traduccion", "ok"}, true)
	assert.Equal(t, model.ClassificationResult{Label: model.SentimentPositive, Confidence: 0.95}, outcomes[0].Resolve())
	assert.Nil(t, outcomes[0].TranslationFailure)

	// 翻译失败时使用原文，不影响分类
	require.NotNil(t, outcomes[1].TranslationFailure)
	assert.Equal(t, model.FailureTranslation, outcomes[1].TranslationFailure.Kind)
	assert.Nil(t, outcomes[1].Failure)

	// 过短的文本不翻译
	assert.Nil(t, outcomes[2].TranslationFailure)
	assert.Equal(t, []string{"hola mundo", "sin traduccion"}, tr.calls)
	assert.Equal(t, []string{"hello world", "sin traduccion", "ok"}, fake.seen())
}

func TestClassifyTranslateWithoutTranslator(t *testing.T) {
	fake := newFakeClassifier(nil)
	o := newTestOrchestrator(fake, 16)

	outcomes := o.Classify(context.Background(), []string{"hola mundo"}, true)
	assert.Nil(t, outcomes[0].TranslationFailure)
	assert.Equal(t, []string{"hola mundo"}, fake.seen())
}

func TestWithThresholds(t *testing.T) {
	fake := newFakeClassifier(map[string]classifier.Prediction{
		"good": {Label: "positive", Score: 0.8},
	})
	o := newTestOrchestrator(fake, 16)
	strict := o.WithThresholds(Thresholds{Low: 0.9, High: 0.95})

	assert.Equal(t, model.SentimentPositive, o.ClassifyTexts(context.Background(), []string{"good"}, false)[0].Label)
	assert.Equal(t, model.SentimentNeutral, strict.ClassifyTexts(context.Background(), []string{"good"}, false)[0].Label)
	assert.Equal(t, defaultThresholds, o.Thresholds())
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "any", truncateRunes("any", 0))
}
