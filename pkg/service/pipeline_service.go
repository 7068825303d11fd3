package service

import (
	"context"
	"time"

	"sentiment-lens/config"
	"sentiment-lens/pkg/classifier"
	"sentiment-lens/pkg/metrics"
	"sentiment-lens/pkg/model"
	"sentiment-lens/pkg/translator"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	ModeAnalyze  = "analyze"
	ModeValidate = "validate"
	ModeCompare  = "compare"
)

// RunOptions 单次运行的开关
type RunOptions struct {
	Translate bool
	// Validate 仅对 analyze 生效：存在标注列时附带验证报告
	Validate bool
}

type PipelineOptions struct {
	SampleSize      int
	SampleTextChars int
}

// PipelineService 串联列探测、文本清洗、分类和验证
type PipelineService struct {
	detector     *ColumnDetector
	normalizer   *TextNormalizer
	orchestrator *ClassificationOrchestrator
	engine       *ValidationEngine
	metrics      *metrics.Metrics
	opts         PipelineOptions
}

func NewPipelineService(orchestrator *ClassificationOrchestrator, normalizer *TextNormalizer, engine *ValidationEngine, m *metrics.Metrics, opts PipelineOptions) *PipelineService {
	return &PipelineService{
		detector:     NewColumnDetector(),
		normalizer:   normalizer,
		orchestrator: orchestrator,
		engine:       engine,
		metrics:      m,
		opts:         opts,
	}
}

// NewPipelineServiceFromConfig 按全局配置组装流水线，translator 可以为 nil
func NewPipelineServiceFromConfig(cfg *config.GlobalConfig, c classifier.Classifier, t translator.Translator, m *metrics.Metrics) *PipelineService {
	p := cfg.PipelineConfig
	orchestrator := NewClassificationOrchestrator(c, t, m, NewOrchestratorOptions(p, cfg.TranslatorConfig))
	return NewPipelineService(
		orchestrator,
		NewTextNormalizer(p.StopwordsEnabled, p.CustomStopwords),
		NewValidationEngine(p.ErrorSampleSize),
		m,
		PipelineOptions{SampleSize: p.SampleSize, SampleTextChars: p.SampleTextChars},
	)
}

// Analyze 分类模式。opts.Validate 为 true 且存在标注列时附带验证报告，
// 验证失败不影响分类结果
func (s *PipelineService) Analyze(ctx context.Context, ds *model.Dataset, opts RunOptions) (*model.AnalysisReport, *model.Dataset, error) {
	return s.run(ctx, ds, ModeAnalyze, opts, s.orchestrator)
}

// Validate 验证模式，必须存在可用的标注列，没有标注的行会被丢弃
func (s *PipelineService) Validate(ctx context.Context, ds *model.Dataset, translate bool) (*model.AnalysisReport, *model.Dataset, error) {
	return s.run(ctx, ds, ModeValidate, RunOptions{Translate: translate, Validate: true}, s.orchestrator)
}

func (s *PipelineService) run(ctx context.Context, ds *model.Dataset, mode string, opts RunOptions, orchestrator *ClassificationOrchestrator) (report *model.AnalysisReport, out *model.Dataset, err error) {
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.IncRun(mode, status)
	}()

	if ds == nil {
		return nil, nil, errors.Wrap(model.ErrMalformedInput, "数据集为空")
	}

	startTime := time.Now()
	report = &model.AnalysisReport{
		RunID:     uuid.NewString(),
		Source:    ds.Source,
		StartedAt: startTime,
	}
	strictTruth := mode != ModeAnalyze

	// 1. 列探测
	textCol, err := s.detector.DetectTextColumn(ds)
	if err != nil {
		return nil, nil, err
	}
	report.TextColumn = textCol
	truthCol, hasTruth := s.detector.DetectGroundTruthColumn(ds)
	if hasTruth {
		report.GroundTruthColumn = truthCol
		zap.S().Infof("找到标注列: '%s'", truthCol)
	} else if strictTruth {
		return nil, nil, errors.Wrap(model.ErrNoGroundTruth, "未找到标注列")
	}

	// 2. 文本与标注归一化
	rows := ds.CloneRows()
	for i := range rows {
		rows[i].Text = s.normalizer.DisplayText(rows[i].Values[textCol])
		if hasTruth {
			rows[i].TrueSentiment = NormalizeLabel(rows[i].Values[truthCol])
		}
	}

	if strictTruth {
		kept := rows[:0]
		for _, row := range rows {
			if row.HasTruth() {
				kept = append(kept, row)
			}
		}
		report.RemovedNoTruth = len(rows) - len(kept)
		rows = kept
		if report.RemovedNoTruth > 0 {
			zap.S().Warnf("丢弃 %d 行无法识别标注的数据", report.RemovedNoTruth)
			s.metrics.AddRemoved("no_truth", report.RemovedNoTruth)
		}
		if len(rows) == 0 {
			return nil, nil, errors.WithStack(model.ErrNoGroundTruth)
		}
	}

	// 3. 清洗并丢弃空文本
	kept := rows[:0]
	for _, row := range rows {
		row.CleanText = s.normalizer.CleanText(row.Values[textCol])
		if row.CleanText == "" {
			report.RemovedEmpty++
			continue
		}
		kept = append(kept, row)
	}
	rows = kept
	if report.RemovedEmpty > 0 {
		zap.S().Warnf("丢弃 %d 行清洗后为空的文本", report.RemovedEmpty)
		s.metrics.AddRemoved("empty_text", report.RemovedEmpty)
	}
	zap.S().Infof("开始分类: %d 行, 翻译: %v", len(rows), opts.Translate)

	// 4. 分类，输出与输入逐行对应
	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Text
	}
	outcomes := orchestrator.Classify(ctx, texts, opts.Translate)
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "分类被中断")
	}
	for i, outcome := range outcomes {
		res := outcome.Resolve()
		rows[i].PredictedSentiment = res.Label
		rows[i].ConfidenceScore = res.Confidence
		if outcome.Failure != nil && outcome.Failure.Kind != model.FailureEmptyInput {
			report.ClassificationFailures++
		}
		if outcome.TranslationFailure != nil {
			report.TranslationFailures++
		}
	}
	if report.ClassificationFailures > 0 {
		zap.S().Warnf("%d 行分类失败，已降级为 NEUTRAL", report.ClassificationFailures)
	}

	// 5. 汇总
	report.Total = len(rows)
	report.Sentiments, report.AvgConfidence, report.Samples = summarize(rows, s.opts.SampleSize, s.opts.SampleTextChars)

	// 6. 验证
	if opts.Validate && hasTruth {
		validation, verr := s.engine.Evaluate(rows)
		switch {
		case verr == nil:
			report.Validation = validation
			s.metrics.SetValidationAccuracy(validation.Accuracy)
			zap.S().Infof("验证完成: 准确率 %.2f%%, F1 %.4f", validation.Accuracy*100, validation.F1Score)
		case strictTruth:
			return nil, nil, verr
		default:
			zap.S().Warnf("跳过验证: %v", verr)
		}
	}

	report.Duration = time.Since(startTime).String()
	zap.S().Infof("处理完成: %d 行, 耗时 %s", report.Total, report.Duration)
	return report, ds.WithRows(rows), nil
}

// Compare 依次用每组配置运行验证，某组失败时记录错误并继续
func (s *PipelineService) Compare(ctx context.Context, ds *model.Dataset, profiles []config.ProfileConfig) []model.ProfileResult {
	results := make([]model.ProfileResult, 0, len(profiles))
	for _, p := range profiles {
		th := s.orchestrator.Thresholds()
		if p.LowThreshold != nil {
			th.Low = *p.LowThreshold
		}
		if p.HighThreshold != nil {
			th.High = *p.HighThreshold
		}

		zap.S().Infof("运行配置 '%s' (翻译: %v, 阈值: %.2f/%.2f)", p.Name, p.Translate, th.Low, th.High)
		report, _, err := s.run(ctx, ds, ModeCompare, RunOptions{Translate: p.Translate, Validate: true}, s.orchestrator.WithThresholds(th))
		if err != nil {
			zap.S().Warnf("配置 '%s' 运行失败: %v", p.Name, err)
			results = append(results, model.ProfileResult{Name: p.Name, Error: err.Error()})
			continue
		}
		v := report.Validation
		results = append(results, model.ProfileResult{
			Name: p.Name,
			Metrics: &model.ProfileMetrics{
				Accuracy:  v.Accuracy,
				Precision: v.Precision,
				Recall:    v.Recall,
				F1Score:   v.F1Score,
			},
			Report: v,
		})
	}
	return results
}
