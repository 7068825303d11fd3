package service

import (
	"context"
	"sync"
	"testing"

	"sentiment-lens/pkg/classifier"
	"sentiment-lens/pkg/model"

	"github.com/pkg/errors"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClassifier 按文本查表返回结果，记录每次批量调用
type fakeClassifier struct {
	mu      sync.Mutex
	calls   [][]string
	results map[string]classifier.Prediction
	// batchErr 非空时，对包含该文本的批次返回错误
	batchErr func(texts []string) error
}

func newFakeClassifier(results map[string]classifier.Prediction) *fakeClassifier {
	return &fakeClassifier{results: results}
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (classifier.Prediction, error) {
	preds, err := f.ClassifyBatch(ctx, []string{text})
	if err != nil {
		return classifier.Prediction{}, err
	}
	return preds[0], nil
}

func (f *fakeClassifier) ClassifyBatch(_ context.Context, texts []string) ([]classifier.Prediction, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	f.mu.Unlock()

	if f.batchErr != nil {
		if err := f.batchErr(texts); err != nil {
			return nil, err
		}
	}
	preds := make([]classifier.Prediction, len(texts))
	for i, t := range texts {
		if p, ok := f.results[t]; ok {
			preds[i] = p
			continue
		}
		preds[i] = classifier.Prediction{Label: "neutral", Score: 0.9}
	}
	return preds, nil
}

func (f *fakeClassifier) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		out = append(out, c...)
	}
	return out
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeTranslator 按文本查表翻译，表中没有的文本返回错误
type fakeTranslator struct {
	mu           sync.Mutex
	translations map[string]string
	calls        []string
}

func (t *fakeTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	t.mu.Lock()
	t.calls = append(t.calls, text)
	t.mu.Unlock()
	if out, ok := t.translations[text]; ok {
		return out, nil
	}
	return "", errTranslate
}

var errTranslate = errors.New("translation failed")

func newDataset(columns []model.Column, values ...map[string]any) *model.Dataset {
	rows := make([]model.Row, len(values))
	for i, v := range values {
		rows[i] = model.Row{Index: i, Values: v}
	}
	return &model.Dataset{Source: "test.csv", Columns: columns, Rows: rows}
}
