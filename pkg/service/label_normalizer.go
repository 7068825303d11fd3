package service

import (
	"strings"

	"sentiment-lens/pkg/model"

	"github.com/spf13/cast"
)

var (
	positiveWords = []string{"POSITIVE", "POS", "GOOD", "HAPPY", "SATISFIED", "1", "TRUE"}
	negativeWords = []string{"NEGATIVE", "NEG", "BAD", "UNHAPPY", "UNSATISFIED", "0", "FALSE"}
	neutralWords  = []string{"NEUTRAL", "NEU", "OKAY", "OK", "MIXED", "AVERAGE", "2"}
)

// NormalizeLabel 把标注值映射为标准情感标签，无法识别时返回 SentimentAbsent。
// 优先级：标准标签、同义词表、数值评分（<=2 负面，==3 中性，其余正面）
func NormalizeLabel(v any) model.Sentiment {
	if isMissing(v) {
		return model.SentimentAbsent
	}

	s := strings.ToUpper(strings.TrimSpace(displayString(v)))
	if label := model.Sentiment(s); label.Valid() {
		return label
	}

	switch {
	case containsString(positiveWords, s):
		return model.SentimentPositive
	case containsString(negativeWords, s):
		return model.SentimentNegative
	case containsString(neutralWords, s):
		return model.SentimentNeutral
	}

	f, ok := numericValue(v)
	if !ok {
		return model.SentimentAbsent
	}
	switch {
	case f <= 2:
		return model.SentimentNegative
	case f == 3:
		return model.SentimentNeutral
	default:
		return model.SentimentPositive
	}
}

func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case string:
		x = strings.TrimSpace(x)
		if x == "" {
			return 0, false
		}
		f, err := cast.ToFloat64E(x)
		return f, err == nil
	case bool:
		// 布尔值已在同义词表中处理
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}
