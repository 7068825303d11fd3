package service

import (
	"math"
	"testing"

	"sentiment-lens/pkg/model"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   any
		want model.Sentiment
	}{
		{"4", model.SentimentPositive},
		{"bad", model.SentimentNegative},
		{"3", model.SentimentNeutral},
		{"xyz", model.SentimentAbsent},
		{nil, model.SentimentAbsent},
		{"", model.SentimentAbsent},
		{math.NaN(), model.SentimentAbsent},
		{" positive ", model.SentimentPositive},
		{"Pos", model.SentimentPositive},
		{"okay", model.SentimentNeutral},
		{"1", model.SentimentPositive},
		{"0", model.SentimentNegative},
		{"2", model.SentimentNeutral},
		{"3.0", model.SentimentNeutral},
		{"-1", model.SentimentNegative},
		{1, model.SentimentPositive},
		{int64(4), model.SentimentPositive},
		{true, model.SentimentPositive},
		{false, model.SentimentNegative},
		// 浮点数的字符串形式带小数点，不会命中同义词表
		{1.0, model.SentimentNegative},
		{3.0, model.SentimentNeutral},
		{2.5, model.SentimentPositive},
		{5.0, model.SentimentPositive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLabel(tt.in), "input %#v", tt.in)
	}
}

func TestNormalizeLabelIdempotent(t *testing.T) {
	for _, label := range model.SentimentLabels {
		assert.Equal(t, label, NormalizeLabel(string(label)))
		assert.Equal(t, label, NormalizeLabel(string(NormalizeLabel(string(label)))))
	}
}
