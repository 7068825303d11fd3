package config

import (
	"time"

	"github.com/pkg/errors"
)

// TranslatorConfig 可选的翻译能力，失败时流水线使用原文
type TranslatorConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Provider string        `json:"provider" yaml:"provider"`
	APIKey   string        `json:"apiKey" yaml:"apiKey"`
	Model    string        `json:"model" yaml:"model"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
	MaxChars int           `json:"maxChars" yaml:"maxChars"` // 单次翻译的最大字符数
	MinChars int           `json:"minChars" yaml:"minChars"` // 短于该长度的文本不翻译
}

func (t *TranslatorConfig) Validate() []error {
	var errs = make([]error, 0)
	if !t.Enabled {
		return errs
	}
	if t.Provider != "genai" {
		errs = append(errs, errors.Errorf("translator.provider 只支持 genai, 当前为 %q", t.Provider))
	}
	if t.APIKey == "" {
		errs = append(errs, errors.Errorf("translator.apiKey 不能为空"))
	}
	if t.Timeout <= 0 {
		errs = append(errs, errors.Errorf("translator.timeout 必须大于 0"))
	}
	if t.MaxChars < 1 {
		errs = append(errs, errors.Errorf("translator.maxChars 必须 >= 1"))
	}
	return errs
}

func NewDefaultTranslatorConfig() *TranslatorConfig {
	return &TranslatorConfig{
		Enabled:  false,
		Provider: "genai",
		Model:    "gemini-2.5-flash",
		Timeout:  30 * time.Second,
		MaxChars: 512,
		MinChars: 3,
	}
}
