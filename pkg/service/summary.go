package service

import (
	"math"

	"sentiment-lens/pkg/model"
)

// summarize 统计各标签的数量、占比（保留 1 位小数）和平均置信度（保留 4 位小数），
// 并取前 sampleSize 行作为样本
func summarize(rows []model.Row, sampleSize, sampleChars int) (map[model.Sentiment]model.LabelSummary, float64, []model.SampleRow) {
	summaries := make(map[model.Sentiment]model.LabelSummary, len(model.SentimentLabels))
	total := len(rows)

	counts := make(map[model.Sentiment]int, len(model.SentimentLabels))
	sums := make(map[model.Sentiment]float64, len(model.SentimentLabels))
	var sumAll float64
	for _, row := range rows {
		counts[row.PredictedSentiment]++
		sums[row.PredictedSentiment] += row.ConfidenceScore
		sumAll += row.ConfidenceScore
	}

	for _, label := range model.SentimentLabels {
		count := counts[label]
		summaries[label] = model.LabelSummary{
			Count:         count,
			Percentage:    roundTo(safeDiv(float64(count), float64(total))*100, 1),
			AvgConfidence: roundTo(safeDiv(sums[label], float64(count)), 4),
		}
	}

	n := sampleSize
	if n > total {
		n = total
	}
	samples := make([]model.SampleRow, 0, n)
	for _, row := range rows[:n] {
		samples = append(samples, model.SampleRow{
			Text:       truncateRunes(row.Text, sampleChars),
			Sentiment:  row.PredictedSentiment,
			Confidence: row.ConfidenceScore,
		})
	}
	return summaries, roundTo(safeDiv(sumAll, float64(total)), 4), samples
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
