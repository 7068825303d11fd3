package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGenAIModel = "gemini-2.5-flash"

const genaiSystemPrompt = `Detect the language of the user's text and translate it to English.
Respond with JSON only: {"language": "<ISO 639-1 code>", "translation": "<english text>"}.
If the text is already English, return it unchanged with language "en".
If the language cannot be determined, return an empty language.`

// GenAITranslator 使用 Gemini 在一次调用中完成语言识别与翻译
type GenAITranslator struct {
	client *genai.Client
	model  string
}

type genaiTranslation struct {
	Language    string `json:"language"`
	Translation string `json:"translation"`
}

func NewGenAITranslator(ctx context.Context, apiKey, model string) (*GenAITranslator, error) {
	if apiKey == "" {
		return nil, errors.New("GenAI API key is required")
	}
	if model == "" {
		model = defaultGenAIModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GenAI client")
	}
	return &GenAITranslator{client: client, model: model}, nil
}

func (g *GenAITranslator) Translate(ctx context.Context, text, sourceLangHint string) (string, error) {
	var temperature float32
	prompt := text
	if sourceLangHint != "" {
		prompt = fmt.Sprintf("(source language hint: %s)\n%s", sourceLangHint, text)
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(genaiSystemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", errors.Wrap(err, "GenAI translate failed")
	}
	return decodeTranslation(text, result.Text())
}

// decodeTranslation 解析模型输出；英文原样返回原文
func decodeTranslation(original, raw string) (string, error) {
	var out genaiTranslation
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return "", errors.Wrapf(err, "解析翻译结果失败 (response: %s)", raw)
	}
	lang := strings.ToLower(strings.TrimSpace(out.Language))
	if lang == "" {
		return "", ErrLanguageDetection
	}
	if lang == "en" {
		return original, nil
	}
	if strings.TrimSpace(out.Translation) == "" {
		return "", errors.Errorf("语言 %s 的翻译结果为空", lang)
	}
	zap.S().Debugf("已从 %s 翻译: %.50s → %.50s", lang, original, out.Translation)
	return out.Translation, nil
}
