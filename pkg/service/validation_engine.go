package service

import (
	"fmt"
	"strings"

	"sentiment-lens/pkg/model"

	"github.com/pkg/errors"
)

const reportDigits = 4

// ValidationEngine 基于真实标签与预测标签计算验证指标
type ValidationEngine struct {
	errorSampleSize int
}

func NewValidationEngine(errorSampleSize int) *ValidationEngine {
	if errorSampleSize < 0 {
		errorSampleSize = 0
	}
	return &ValidationEngine{errorSampleSize: errorSampleSize}
}

// classStats 单个标签的统计
type classStats struct {
	label     model.Sentiment
	support   int
	predicted int
	correct   int
}

func (c classStats) precision() float64 { return safeDiv(float64(c.correct), float64(c.predicted)) }
func (c classStats) recall() float64    { return safeDiv(float64(c.correct), float64(c.support)) }
func (c classStats) f1() float64 {
	p, r := c.precision(), c.recall()
	return safeDiv(2*p*r, p+r)
}

// Evaluate 只统计真实标签与预测标签都存在的行。
// 加权 precision/recall/F1 以各类真实样本数为权重，分母为 0 时记 0
func (e *ValidationEngine) Evaluate(rows []model.Row) (*model.ValidationReport, error) {
	var matrix model.ConfusionMatrix
	stats := make([]classStats, len(model.SentimentLabels))
	for i, l := range model.SentimentLabels {
		stats[i].label = l
	}

	var (
		withTruth                           int
		total, correct                      int
		sumConf, sumCorrectConf, sumErrConf float64
		errorsSample                        = make([]model.ErrorRow, 0, e.errorSampleSize)
	)
	for _, row := range rows {
		if !row.HasTruth() {
			continue
		}
		withTruth++
		ti, pi := row.TrueSentiment.Index(), row.PredictedSentiment.Index()
		if pi < 0 {
			continue
		}
		total++
		matrix[ti][pi]++
		stats[ti].support++
		stats[pi].predicted++
		sumConf += row.ConfidenceScore
		if ti == pi {
			correct++
			stats[ti].correct++
			sumCorrectConf += row.ConfidenceScore
			continue
		}
		sumErrConf += row.ConfidenceScore
		if len(errorsSample) < e.errorSampleSize {
			errorsSample = append(errorsSample, model.ErrorRow{
				Index:              row.Index,
				Text:               row.Text,
				TrueSentiment:      row.TrueSentiment,
				PredictedSentiment: row.PredictedSentiment,
				ConfidenceScore:    row.ConfidenceScore,
			})
		}
	}
	if withTruth == 0 {
		return nil, errors.WithStack(model.ErrNoGroundTruth)
	}
	if total == 0 {
		return nil, errors.Errorf("%d 行有标注但没有预测结果", withTruth)
	}

	wrong := total - correct
	report := &model.ValidationReport{
		Accuracy:           float64(correct) / float64(total),
		TotalSamples:       total,
		CorrectPredictions: correct,
		WrongPredictions:   wrong,
		ErrorRate:          float64(wrong) / float64(total),
		AvgConfidence:      sumConf / float64(total),
		CorrectConfidence:  safeDiv(sumCorrectConf, float64(correct)),
		ErrorConfidence:    safeDiv(sumErrConf, float64(wrong)),
		ClassMetrics:       make(map[model.Sentiment]model.ClassMetrics),
		ConfusionMatrix:    matrix,
		ConfusionLabels:    append([]model.Sentiment(nil), model.SentimentLabels...),
		SampleErrors:       errorsSample,
	}

	for _, s := range stats {
		w := float64(s.support) / float64(total)
		report.Precision += w * s.precision()
		report.Recall += w * s.recall()
		report.F1Score += w * s.f1()
		if s.support > 0 {
			report.ClassMetrics[s.label] = model.ClassMetrics{
				Count:    s.support,
				Correct:  s.correct,
				Accuracy: float64(s.correct) / float64(s.support),
			}
		}
	}
	report.ClassificationReport = formatClassificationReport(stats, report.Accuracy, total)
	return report, nil
}

// formatClassificationReport 生成文本形式的分类报告，
// 只列出在真实标签或预测标签中出现过的类别
func formatClassificationReport(stats []classStats, accuracy float64, total int) string {
	present := make([]classStats, 0, len(stats))
	for _, s := range stats {
		if s.support > 0 || s.predicted > 0 {
			present = append(present, s)
		}
	}

	width := len("weighted avg")
	for _, s := range present {
		if len(s.label) > width {
			width = len(s.label)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s ", width, "")
	for _, h := range []string{"precision", "recall", "f1-score", "support"} {
		fmt.Fprintf(&b, " %9s", h)
	}
	b.WriteString("\n\n")

	writeRow := func(name string, p, r, f float64, support int) {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n", width, name, reportDigits, p, reportDigits, r, reportDigits, f, support)
	}

	var macroP, macroR, macroF, weightP, weightR, weightF float64
	for _, s := range present {
		writeRow(string(s.label), s.precision(), s.recall(), s.f1(), s.support)
		macroP += s.precision()
		macroR += s.recall()
		macroF += s.f1()
		w := float64(s.support) / float64(total)
		weightP += w * s.precision()
		weightR += w * s.recall()
		weightF += w * s.f1()
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", reportDigits, accuracy, total)
	n := float64(len(present))
	writeRow("macro avg", safeDiv(macroP, n), safeDiv(macroR, n), safeDiv(macroF, n), total)
	writeRow("weighted avg", weightP, weightR, weightF, total)
	return b.String()
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
