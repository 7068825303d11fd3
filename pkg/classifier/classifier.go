// Package classifier 定义外部情感分类能力的契约，以及可选的后端实现。
// 分类器在进程启动时构建一次，通过依赖注入传给分类编排器。
package classifier

import (
	"context"
	"strings"

	"sentiment-lens/config"
	"sentiment-lens/pkg/model"

	"github.com/pkg/errors"
)

// Prediction 分类器对单条文本的原始输出：原生标签与首选标签的分数
type Prediction struct {
	Label string
	Score float64
	// Err 批量调用中单条结果失败时非空，其它条目不受影响
	Err error
}

// Classifier 外部情感分类能力。ClassifyBatch 返回结果与输入等长且顺序一致
type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
	ClassifyBatch(ctx context.Context, texts []string) ([]Prediction, error)
}

// nativeLabels 原生标签到规范标签的映射
var nativeLabels = map[string]model.Sentiment{
	"LABEL_0":  model.SentimentNegative,
	"LABEL_1":  model.SentimentNeutral,
	"LABEL_2":  model.SentimentPositive,
	"negative": model.SentimentNegative,
	"neutral":  model.SentimentNeutral,
	"positive": model.SentimentPositive,
}

// MapNativeLabel 将分类器原生标签映射为规范标签，字典中没有的标签原样转大写返回，
// 结果可能不是规范标签，由调用方判断
func MapNativeLabel(native string) model.Sentiment {
	if s, ok := nativeLabels[native]; ok {
		return s
	}
	return model.Sentiment(strings.ToUpper(native))
}

// New 按配置构建分类器
func New(cfg *config.ClassifierConfig) (Classifier, error) {
	if cfg == nil {
		return nil, errors.Wrap(model.ErrClassifierUnavailable, "缺少 classifier 配置")
	}
	switch strings.ToLower(cfg.Provider) {
	case config.ClassifierProviderTriton:
		return NewTritonClassifier(cfg.Triton)
	case config.ClassifierProviderAnthropic:
		return NewAnthropicClassifier(cfg.Anthropic)
	default:
		return nil, errors.Wrapf(model.ErrClassifierUnavailable, "不支持的分类器 %q", cfg.Provider)
	}
}
