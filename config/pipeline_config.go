package config

import (
	"github.com/pkg/errors"
)

// PipelineConfig 分类流水线参数
type PipelineConfig struct {
	BatchSize         int      `json:"batchSize" yaml:"batchSize"`               // 每批送入分类器的文本数
	MaxInputChars     int      `json:"maxInputChars" yaml:"maxInputChars"`       // 分类器最大输入字符数
	LowThreshold      float64  `json:"lowThreshold" yaml:"lowThreshold"`         // 低于该置信度强制判为 NEUTRAL
	HighThreshold     float64  `json:"highThreshold" yaml:"highThreshold"`       // 高置信度阈值
	Concurrency       int      `json:"concurrency" yaml:"concurrency"`           // 并行批次数，1 表示顺序执行
	Translate         bool     `json:"translate" yaml:"translate"`               // 分类前是否翻译为英文
	ValidateOnAnalyze bool     `json:"validate" yaml:"validate"`                 // analyze 时存在标注列是否附带验证报告
	SampleSize        int      `json:"sampleSize" yaml:"sampleSize"`             // 报告中的样本行数
	SampleTextChars   int      `json:"sampleTextChars" yaml:"sampleTextChars"`   // 样本文本截断长度
	ErrorSampleSize   int      `json:"errorSampleSize" yaml:"errorSampleSize"`   // 验证报告中错误样本数
	StopwordsEnabled  bool     `json:"stopwordsEnabled" yaml:"stopwordsEnabled"` // 清洗文本时是否去除停用词
	CustomStopwords   []string `json:"customStopwords" yaml:"customStopwords"`   // 额外停用词
}

func (p *PipelineConfig) Validate() []error {
	var errs = make([]error, 0)
	if p.BatchSize < 1 {
		errs = append(errs, errors.Errorf("batchSize 必须 >= 1, 当前为 %d", p.BatchSize))
	}
	if p.MaxInputChars < 1 {
		errs = append(errs, errors.Errorf("maxInputChars 必须 >= 1, 当前为 %d", p.MaxInputChars))
	}
	if p.LowThreshold < 0 || p.LowThreshold > 1 {
		errs = append(errs, errors.Errorf("lowThreshold 必须在 [0,1] 之间, 当前为 %f", p.LowThreshold))
	}
	if p.HighThreshold < 0 || p.HighThreshold > 1 {
		errs = append(errs, errors.Errorf("highThreshold 必须在 [0,1] 之间, 当前为 %f", p.HighThreshold))
	}
	if p.LowThreshold > p.HighThreshold {
		errs = append(errs, errors.Errorf("lowThreshold(%f) 不能大于 highThreshold(%f)", p.LowThreshold, p.HighThreshold))
	}
	if p.Concurrency < 1 {
		errs = append(errs, errors.Errorf("concurrency 必须 >= 1, 当前为 %d", p.Concurrency))
	}
	if p.SampleSize < 0 || p.ErrorSampleSize < 0 {
		errs = append(errs, errors.Errorf("样本数量不能为负数"))
	}
	if p.SampleTextChars < 1 {
		errs = append(errs, errors.Errorf("sampleTextChars 必须 >= 1, 当前为 %d", p.SampleTextChars))
	}
	return errs
}

func NewDefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		BatchSize:         16,
		MaxInputChars:     512,
		LowThreshold:      0.55,
		HighThreshold:     0.70,
		Concurrency:       1,
		Translate:         false,
		ValidateOnAnalyze: true,
		SampleSize:        100,
		SampleTextChars:   200,
		ErrorSampleSize:   10,
		StopwordsEnabled:  true,
	}
}
