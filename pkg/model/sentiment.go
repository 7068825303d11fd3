package model

// Sentiment 规范情感标签，空字符串表示缺失（SentimentAbsent）
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"

	SentimentAbsent Sentiment = ""
)

// SentimentLabels 固定的标签顺序，混淆矩阵与各类统计都按此顺序
var SentimentLabels = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// Valid 是否为三个规范标签之一
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Index 在 SentimentLabels 中的下标，非规范标签返回 -1
func (s Sentiment) Index() int {
	for i, l := range SentimentLabels {
		if l == s {
			return i
		}
	}
	return -1
}

func (s Sentiment) String() string {
	return string(s)
}
