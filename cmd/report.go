package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"sentiment-lens/pkg/model"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case "json", "yaml", "yml":
		return nil
	}
	return fmt.Errorf("不支持的输出格式 %q, 可选 json/yaml", format)
}

// writeReport path 为空时写到标准输出
func writeReport(path, format string, v any) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("创建输出文件失败: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := encodeReport(w, format, v); err != nil {
		return err
	}
	if path != "" {
		zap.S().Infof("报告已写入 %s", path)
	}
	return nil
}

func encodeReport(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return checkFormat(format)
}

func logAnalysis(report *model.AnalysisReport) {
	zap.S().Infof("文本列: %s, 有效行数: %d, 丢弃空文本: %d", report.TextColumn, report.Total, report.RemovedEmpty)
	for _, label := range model.SentimentLabels {
		s := report.Sentiments[label]
		zap.S().Infof("  %-8s %5d (%5.1f%%) 平均置信度 %.4f", label, s.Count, s.Percentage, s.AvgConfidence)
	}
	if report.ClassificationFailures > 0 || report.TranslationFailures > 0 {
		zap.S().Warnf("分类失败 %d 行, 翻译失败 %d 行", report.ClassificationFailures, report.TranslationFailures)
	}
	if report.Validation != nil {
		logValidation(report.Validation)
	}
}

func logValidation(v *model.ValidationReport) {
	zap.S().Infof("准确率:  %.4f (%.2f%%)", v.Accuracy, v.Accuracy*100)
	zap.S().Infof("精确率:  %.4f", v.Precision)
	zap.S().Infof("召回率:  %.4f", v.Recall)
	zap.S().Infof("F1:      %.4f", v.F1Score)
	zap.S().Infof("正确 %d / 错误 %d / 总数 %d", v.CorrectPredictions, v.WrongPredictions, v.TotalSamples)
	zap.S().Infof("分类报告:\n%s", v.ClassificationReport)
}
