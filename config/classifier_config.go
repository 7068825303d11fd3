package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	ClassifierProviderTriton    = "triton"
	ClassifierProviderAnthropic = "anthropic"
)

// ClassifierConfig 外部情感分类能力的配置
type ClassifierConfig struct {
	Provider  string           `json:"provider" yaml:"provider"`
	Triton    *TritonConfig    `json:"triton" yaml:"triton"`
	Anthropic *AnthropicConfig `json:"anthropic" yaml:"anthropic"`
}

// TritonConfig KServe v2 推理协议（Triton Inference Server）
type TritonConfig struct {
	BaseURL     string        `json:"baseUrl" yaml:"baseUrl"`
	Model       string        `json:"model" yaml:"model"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	InputName   string        `json:"inputName" yaml:"inputName"`
	LabelOutput string        `json:"labelOutput" yaml:"labelOutput"`
	ScoreOutput string        `json:"scoreOutput" yaml:"scoreOutput"`
	// Labels 非空时表示模型输出的是概率向量，按下标映射到原生标签
	Labels []string `json:"labels" yaml:"labels"`
}

type AnthropicConfig struct {
	APIKey    string `json:"apiKey" yaml:"apiKey"`
	Model     string `json:"model" yaml:"model"`
	MaxTokens int64  `json:"maxTokens" yaml:"maxTokens"`
}

func (c *ClassifierConfig) Validate() []error {
	var errs = make([]error, 0)
	switch strings.ToLower(c.Provider) {
	case ClassifierProviderTriton:
		if c.Triton == nil || c.Triton.BaseURL == "" {
			errs = append(errs, errors.Errorf("classifier.triton.baseUrl 不能为空"))
		} else if c.Triton.Model == "" {
			errs = append(errs, errors.Errorf("classifier.triton.model 不能为空"))
		}
	case ClassifierProviderAnthropic:
		if c.Anthropic == nil || c.Anthropic.APIKey == "" {
			errs = append(errs, errors.Errorf("classifier.provider=anthropic 时必须配置 classifier.anthropic.apiKey"))
		}
	default:
		errs = append(errs, errors.Errorf("classifier.provider 只能是 triton 或 anthropic, 当前为 %q", c.Provider))
	}
	return errs
}

func NewDefaultClassifierConfig() *ClassifierConfig {
	return &ClassifierConfig{
		Provider: ClassifierProviderTriton,
		Triton: &TritonConfig{
			BaseURL:     "http://localhost:8000",
			Model:       "twitter-roberta-base-sentiment-latest",
			Timeout:     30 * time.Second,
			InputName:   "TEXT",
			LabelOutput: "LABEL",
			ScoreOutput: "SCORE",
		},
		Anthropic: &AnthropicConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 2048,
		},
	}
}
