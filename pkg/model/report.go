package model

import "time"

// LabelSummary 单个标签的分布统计
type LabelSummary struct {
	Count         int     `json:"count" yaml:"count"`
	Percentage    float64 `json:"percentage" yaml:"percentage"`
	AvgConfidence float64 `json:"avgConfidence" yaml:"avgConfidence"`
}

// SampleRow 报告中展示的样本行
type SampleRow struct {
	Text       string    `json:"text" yaml:"text"`
	Sentiment  Sentiment `json:"sentiment" yaml:"sentiment"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
}

// ErrorRow 被误分类的样本行
type ErrorRow struct {
	Index              int       `json:"index" yaml:"index"`
	Text               string    `json:"text" yaml:"text"`
	TrueSentiment      Sentiment `json:"trueSentiment" yaml:"trueSentiment"`
	PredictedSentiment Sentiment `json:"predictedSentiment" yaml:"predictedSentiment"`
	ConfidenceScore    float64   `json:"confidenceScore" yaml:"confidenceScore"`
}

// ConfusionMatrix 3x3 矩阵，按 (真实标签, 预测标签) 索引，顺序为 SentimentLabels
type ConfusionMatrix [3][3]int

// At 取 (真实, 预测) 单元格
func (m ConfusionMatrix) At(truth, predicted Sentiment) int {
	ti, pi := truth.Index(), predicted.Index()
	if ti < 0 || pi < 0 {
		return 0
	}
	return m[ti][pi]
}

// Total 所有单元格之和
func (m ConfusionMatrix) Total() int {
	total := 0
	for i := range m {
		for j := range m[i] {
			total += m[i][j]
		}
	}
	return total
}

// RowSum 某个真实标签的样本数
func (m ConfusionMatrix) RowSum(truth Sentiment) int {
	i := truth.Index()
	if i < 0 {
		return 0
	}
	return m[i][0] + m[i][1] + m[i][2]
}

// ColSum 某个预测标签的样本数
func (m ConfusionMatrix) ColSum(predicted Sentiment) int {
	j := predicted.Index()
	if j < 0 {
		return 0
	}
	return m[0][j] + m[1][j] + m[2][j]
}

// ClassMetrics 单个真实标签上的准确率
type ClassMetrics struct {
	Count    int     `json:"count" yaml:"count"`
	Correct  int     `json:"correct" yaml:"correct"`
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
}

// ValidationReport 验证结果快照
type ValidationReport struct {
	Accuracy  float64 `json:"accuracy" yaml:"accuracy"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1Score   float64 `json:"f1Score" yaml:"f1Score"`

	TotalSamples       int     `json:"totalSamples" yaml:"totalSamples"`
	CorrectPredictions int     `json:"correctPredictions" yaml:"correctPredictions"`
	WrongPredictions   int     `json:"wrongPredictions" yaml:"wrongPredictions"`
	ErrorRate          float64 `json:"errorRate" yaml:"errorRate"`

	AvgConfidence     float64 `json:"avgConfidence" yaml:"avgConfidence"`
	CorrectConfidence float64 `json:"correctConfidence" yaml:"correctConfidence"`
	ErrorConfidence   float64 `json:"errorConfidence" yaml:"errorConfidence"`

	ClassMetrics         map[Sentiment]ClassMetrics `json:"classMetrics" yaml:"classMetrics"`
	ConfusionMatrix      ConfusionMatrix            `json:"confusionMatrix" yaml:"confusionMatrix"`
	ConfusionLabels      []Sentiment                `json:"confusionLabels" yaml:"confusionLabels"`
	ClassificationReport string                     `json:"classificationReport" yaml:"classificationReport"`
	SampleErrors         []ErrorRow                 `json:"sampleErrors" yaml:"sampleErrors"`
}

// AnalysisReport 一次流水线运行的完整输出
type AnalysisReport struct {
	RunID             string    `json:"runId" yaml:"runId"`
	Source            string    `json:"source" yaml:"source"`
	TextColumn        string    `json:"textColumn" yaml:"textColumn"`
	GroundTruthColumn string    `json:"groundTruthColumn,omitempty" yaml:"groundTruthColumn,omitempty"`
	StartedAt         time.Time `json:"startedAt" yaml:"startedAt"`
	Duration          string    `json:"duration" yaml:"duration"`

	Total          int                        `json:"total" yaml:"total"`
	RemovedEmpty   int                        `json:"removedEmpty" yaml:"removedEmpty"`
	RemovedNoTruth int                        `json:"removedNoTruth,omitempty" yaml:"removedNoTruth,omitempty"`
	Sentiments     map[Sentiment]LabelSummary `json:"sentiments" yaml:"sentiments"`
	AvgConfidence  float64                    `json:"avgConfidence" yaml:"avgConfidence"`
	Samples        []SampleRow                `json:"samples" yaml:"samples"`

	ClassificationFailures int `json:"classificationFailures" yaml:"classificationFailures"`
	TranslationFailures    int `json:"translationFailures" yaml:"translationFailures"`

	Validation *ValidationReport `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// ProfileResult compare 中单个配置组合的结果，运行失败时 Metrics 为空
type ProfileResult struct {
	Name    string            `json:"name" yaml:"name"`
	Metrics *ProfileMetrics   `json:"metrics" yaml:"metrics"`
	Error   string            `json:"error,omitempty" yaml:"error,omitempty"`
	Report  *ValidationReport `json:"-" yaml:"-"`
}

type ProfileMetrics struct {
	Accuracy  float64 `json:"accuracy" yaml:"accuracy"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1Score   float64 `json:"f1Score" yaml:"f1Score"`
}
