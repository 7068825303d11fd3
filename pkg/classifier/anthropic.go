package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sentiment-lens/config"
	"sentiment-lens/pkg/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

const anthropicSystemPrompt = `You are a sentiment classifier.
For every input text decide exactly one label from: positive, neutral, negative.
Set score to your probability (between 0 and 1) that the chosen label is correct.

Respond with JSON only (no markdown):
[{"id": 0, "label": "positive", "score": 0.93}, ...]`

// AnthropicClassifier 使用 Claude Messages API 批量判定情感
type AnthropicClassifier struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

type anthropicClassifiedItem struct {
	ID    int     `json:"id"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func NewAnthropicClassifier(cfg *config.AnthropicConfig, opts ...option.RequestOption) (*AnthropicClassifier, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.Wrap(model.ErrClassifierUnavailable, "anthropic 配置缺少 apiKey")
	}
	m := cfg.Model
	if m == "" {
		m = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &AnthropicClassifier{
		client:    anthropic.NewClient(opts...),
		model:     m,
		maxTokens: maxTokens,
	}, nil
}

func (a *AnthropicClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	preds, err := a.ClassifyBatch(ctx, []string{text})
	if err != nil {
		return Prediction{}, err
	}
	if preds[0].Err != nil {
		return Prediction{}, preds[0].Err
	}
	return preds[0], nil
}

func (a *AnthropicClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: anthropicSystemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildAnthropicUserPrompt(texts))),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "Anthropic API error")
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			zap.S().Debugf("anthropic 分类响应 size=%d tokens_in=%d tokens_out=%d", len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return parseAnthropicResponse(block.Text, len(texts))
		}
	}
	return nil, errors.New("Anthropic 响应中没有文本内容")
}

func buildAnthropicUserPrompt(texts []string) string {
	var b strings.Builder
	b.WriteString("Classify these texts:\n\n")
	for i, text := range texts {
		// 换行会破坏逐行格式
		b.WriteString(fmt.Sprintf("ID:%d - %s\n", i, strings.Join(strings.Fields(text), " ")))
	}
	return b.String()
}

// parseAnthropicResponse 解析模型返回的 JSON 数组，缺失的 id 记为单条失败
func parseAnthropicResponse(responseText string, n int) ([]Prediction, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var items []anthropicClassifiedItem
	if err := json.Unmarshal([]byte(responseText), &items); err != nil {
		return nil, errors.Wrapf(err, "解析 Anthropic 分类响应失败 (response: %s)", responseText)
	}

	preds := make([]Prediction, n)
	seen := make([]bool, n)
	for _, item := range items {
		if item.ID < 0 || item.ID >= n {
			continue
		}
		preds[item.ID] = Prediction{Label: strings.TrimSpace(item.Label), Score: item.Score}
		seen[item.ID] = true
	}
	for i := range preds {
		if !seen[i] {
			preds[i].Err = errors.Errorf("响应中缺少 id=%d 的结果", i)
		}
	}
	return preds, nil
}
