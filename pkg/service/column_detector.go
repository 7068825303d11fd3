package service

import (
	"strings"
	"unicode/utf8"

	"sentiment-lens/pkg/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 常见的文本列名
var textColumnKeywords = []string{
	"text", "review", "comment", "feedback",
	"message", "content", "description", "body",
	"tweet", "post", "opinion", "response",
}

// 常见的标注列名，只做精确匹配
var groundTruthKeywords = []string{
	"sentiment", "label", "score", "rating",
	"true_sentiment", "ground_truth", "actual",
}

const (
	detectorSampleSize   = 100
	detectorMinAvgLength = 10.0
)

type ColumnDetector struct {
	sampleSize   int
	minAvgLength float64
}

func NewColumnDetector() *ColumnDetector {
	return &ColumnDetector{
		sampleSize:   detectorSampleSize,
		minAvgLength: detectorMinAvgLength,
	}
}

// DetectTextColumn 按顺序尝试：列名精确匹配、列名包含关键词、
// 第一个平均长度超过 10 个字符的字符串列
func (d *ColumnDetector) DetectTextColumn(ds *model.Dataset) (string, error) {
	for _, col := range ds.Columns {
		if containsString(textColumnKeywords, strings.ToLower(col.Name)) {
			zap.S().Infof("找到文本列: '%s'", col.Name)
			return col.Name, nil
		}
	}

	for _, col := range ds.Columns {
		lower := strings.ToLower(col.Name)
		for _, keyword := range textColumnKeywords {
			if strings.Contains(lower, keyword) {
				zap.S().Infof("找到文本列: '%s' (部分匹配)", col.Name)
				return col.Name, nil
			}
		}
	}

	for _, col := range ds.Columns {
		if col.Kind != model.ColumnKindString {
			continue
		}
		avg, ok := d.averageLength(ds, col.Name)
		if ok && avg > d.minAvgLength {
			zap.S().Warnf("使用 '%s' 作为文本列 (推测)", col.Name)
			return col.Name, nil
		}
	}

	return "", errors.WithStack(model.ErrNoTextColumn)
}

// DetectGroundTruthColumn 标注列是可选的，找不到时返回 false
func (d *ColumnDetector) DetectGroundTruthColumn(ds *model.Dataset) (string, bool) {
	for _, col := range ds.Columns {
		if containsString(groundTruthKeywords, strings.ToLower(col.Name)) {
			return col.Name, true
		}
	}
	return "", false
}

// averageLength 取前 sampleSize 个非空值计算平均字符数
func (d *ColumnDetector) averageLength(ds *model.Dataset, column string) (float64, bool) {
	total, n := 0, 0
	for _, row := range ds.Rows {
		if n >= d.sampleSize {
			break
		}
		v := row.Values[column]
		if isMissing(v) {
			continue
		}
		total += utf8.RuneCountInString(displayString(v))
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(total) / float64(n), true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
