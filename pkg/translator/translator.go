// Package translator 可选的翻译能力。调用方只把它当作尽力而为的服务：
// 任何失败都回退到原文。
package translator

import (
	"context"

	"sentiment-lens/config"

	"github.com/pkg/errors"
)

// Translator 将文本翻译为英文。sourceLangHint 为空时由实现自行识别语言
type Translator interface {
	Translate(ctx context.Context, text, sourceLangHint string) (string, error)
}

// ErrLanguageDetection 无法识别源语言
var ErrLanguageDetection = errors.New("无法识别文本语言")

// New 按配置构建翻译器，未启用时返回 nil
func New(ctx context.Context, cfg *config.TranslatorConfig) (Translator, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Provider {
	case "genai":
		return NewGenAITranslator(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, errors.Errorf("不支持的翻译服务 %q", cfg.Provider)
	}
}
