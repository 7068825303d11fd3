package service

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"sentiment-lens/config"
	"sentiment-lens/pkg/classifier"
	"sentiment-lens/pkg/metrics"
	"sentiment-lens/pkg/model"
	"sentiment-lens/pkg/translator"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Thresholds 置信度阈值。低于 Low 的预测被改判为 NEUTRAL，
// [Low, High) 区间目前不做处理
type Thresholds struct {
	Low  float64
	High float64
}

// ApplyConfidencePolicy 只改标签，不改分数
func ApplyConfidencePolicy(label model.Sentiment, score float64, th Thresholds) model.Sentiment {
	if score < th.Low {
		return model.SentimentNeutral
	}
	return label
}

type TranslationOptions struct {
	Timeout  time.Duration
	MaxChars int
	MinChars int
}

type OrchestratorOptions struct {
	BatchSize     int
	MaxInputChars int
	Concurrency   int
	Thresholds    Thresholds
	Translation   TranslationOptions
}

// NewOrchestratorOptions 从配置组装编排参数
func NewOrchestratorOptions(p *config.PipelineConfig, t *config.TranslatorConfig) OrchestratorOptions {
	return OrchestratorOptions{
		BatchSize:     p.BatchSize,
		MaxInputChars: p.MaxInputChars,
		Concurrency:   p.Concurrency,
		Thresholds:    Thresholds{Low: p.LowThreshold, High: p.HighThreshold},
		Translation: TranslationOptions{
			Timeout:  t.Timeout,
			MaxChars: t.MaxChars,
			MinChars: t.MinChars,
		},
	}
}

// ClassificationOrchestrator 把文本分批送入分类器，处理可选翻译、输入截断、标签映射和阈值策略。
// 输出与输入等长且顺序一致，可恢复失败降级为 (NEUTRAL, 0.0)
type ClassificationOrchestrator struct {
	classifier classifier.Classifier
	translator translator.Translator
	metrics    *metrics.Metrics
	opts       OrchestratorOptions
}

func NewClassificationOrchestrator(c classifier.Classifier, t translator.Translator, m *metrics.Metrics, opts OrchestratorOptions) *ClassificationOrchestrator {
	if opts.BatchSize < 1 {
		opts.BatchSize = 16
	}
	if opts.MaxInputChars < 1 {
		opts.MaxInputChars = 512
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &ClassificationOrchestrator{
		classifier: c,
		translator: t,
		metrics:    m,
		opts:       opts,
	}
}

// WithThresholds 返回使用另一组阈值的副本，共享分类器与翻译器
func (o *ClassificationOrchestrator) WithThresholds(th Thresholds) *ClassificationOrchestrator {
	cp := *o
	cp.opts.Thresholds = th
	return &cp
}

func (o *ClassificationOrchestrator) Thresholds() Thresholds {
	return o.opts.Thresholds
}

// ClassifyTexts 返回降级后的最终结果
func (o *ClassificationOrchestrator) ClassifyTexts(ctx context.Context, texts []string, translate bool) []model.ClassificationResult {
	outcomes := o.Classify(ctx, texts, translate)
	results := make([]model.ClassificationResult, len(outcomes))
	for i, out := range outcomes {
		results[i] = out.Resolve()
	}
	return results
}

// Classify 返回每条文本的结果或可恢复失败
func (o *ClassificationOrchestrator) Classify(ctx context.Context, texts []string, translate bool) []model.ItemOutcome {
	outcomes := make([]model.ItemOutcome, len(texts))
	if len(texts) == 0 {
		return outcomes
	}
	if translate && o.translator == nil {
		zap.S().Warn("未配置翻译服务，使用原文进行分类")
		translate = false
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)
	for start := 0; start < len(texts); start += o.opts.BatchSize {
		end := start + o.opts.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		offset, batch := start, texts[start:end]
		g.Go(func() error {
			// 每个批次写入互不重叠的区间
			o.classifyBatch(gctx, offset, batch, translate, outcomes[offset:offset+len(batch)])
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outcomes {
		if out.TranslationFailure != nil {
			o.metrics.IncFailure(string(out.TranslationFailure.Kind))
		}
		if out.Failure != nil {
			o.metrics.IncFailure(string(out.Failure.Kind))
		}
		res := out.Resolve()
		o.metrics.ObservePrediction(string(res.Label), res.Confidence)
	}
	return outcomes
}

func (o *ClassificationOrchestrator) classifyBatch(ctx context.Context, offset int, texts []string, translate bool, out []model.ItemOutcome) {
	inputs := make([]string, 0, len(texts))
	pending := make([]int, 0, len(texts))

	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i].Failure = &model.RecoverableFailure{
				Kind:  model.FailureEmptyInput,
				Index: offset + i,
				Err:   errors.New("文本为空"),
			}
			continue
		}
		input := text
		if translate {
			translated, err := o.translate(ctx, text)
			if err != nil {
				zap.S().Debugf("第 %d 行翻译失败，使用原文: %v", offset+i, err)
				out[i].TranslationFailure = &model.RecoverableFailure{
					Kind:  model.FailureTranslation,
					Index: offset + i,
					Err:   err,
				}
			} else {
				input = translated
			}
		}
		inputs = append(inputs, truncateRunes(input, o.opts.MaxInputChars))
		pending = append(pending, i)
	}
	if len(inputs) == 0 {
		return
	}

	start := time.Now()
	preds, err := o.classifier.ClassifyBatch(ctx, inputs)
	if err == nil && len(preds) != len(inputs) {
		err = errors.Errorf("分类器返回 %d 条结果, 期望 %d 条", len(preds), len(inputs))
	}
	if err != nil {
		o.metrics.ObserveBatch("error", time.Since(start).Seconds())
		zap.S().Warnf("批次 [%d, %d) 分类失败，整批降级为 NEUTRAL: %v", offset, offset+len(texts), err)
		for _, i := range pending {
			out[i].Failure = &model.RecoverableFailure{
				Kind:  model.FailureClassifierBatch,
				Index: offset + i,
				Err:   err,
			}
		}
		return
	}
	o.metrics.ObserveBatch("ok", time.Since(start).Seconds())

	for k, i := range pending {
		out[i] = o.resolvePrediction(offset+i, preds[k], out[i])
	}
}

func (o *ClassificationOrchestrator) resolvePrediction(index int, pred classifier.Prediction, out model.ItemOutcome) model.ItemOutcome {
	if pred.Err != nil {
		out.Failure = &model.RecoverableFailure{Kind: model.FailureClassifierItem, Index: index, Err: pred.Err}
		return out
	}
	if math.IsNaN(pred.Score) || pred.Score < 0 || pred.Score > 1 {
		out.Failure = &model.RecoverableFailure{
			Kind:  model.FailureClassifierItem,
			Index: index,
			Err:   errors.Errorf("置信度 %v 不在 [0,1] 之间", pred.Score),
		}
		return out
	}
	label := classifier.MapNativeLabel(pred.Label)
	if !label.Valid() {
		// 标签强制为 NEUTRAL，分数保留
		out.Result = model.ClassificationResult{Label: model.SentimentNeutral, Confidence: pred.Score}
		out.Failure = &model.RecoverableFailure{
			Kind:  model.FailureUnmappedLabel,
			Index: index,
			Err:   errors.Errorf("无法映射的标签 %q", pred.Label),
		}
		return out
	}
	out.Result = model.ClassificationResult{
		Label:      ApplyConfidencePolicy(label, pred.Score, o.opts.Thresholds),
		Confidence: pred.Score,
	}
	return out
}

// translate 太短的文本不翻译；截断后再送去翻译
func (o *ClassificationOrchestrator) translate(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < o.opts.Translation.MinChars {
		return text, nil
	}
	if o.opts.Translation.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Translation.Timeout)
		defer cancel()
	}
	input := text
	if o.opts.Translation.MaxChars > 0 {
		input = truncateRunes(text, o.opts.Translation.MaxChars)
	}
	translated, err := o.translator.Translate(ctx, input, "")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(translated) == "" {
		return "", errors.New("翻译结果为空")
	}
	return translated, nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
