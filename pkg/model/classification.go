package model

import "fmt"

// ClassificationResult 单行的最终分类结果。Confidence 为分类器对其首选标签给出的原始分数，
// 不受阈值策略影响
type ClassificationResult struct {
	Label      Sentiment `json:"label"`
	Confidence float64   `json:"confidence"`
}

// DegradedResult 可恢复失败时使用的默认结果
var DegradedResult = ClassificationResult{Label: SentimentNeutral, Confidence: 0.0}

// FailureKind 可恢复失败的类型
type FailureKind string

const (
	FailureEmptyInput      FailureKind = "empty_input"
	FailureClassifierBatch FailureKind = "classifier_batch"
	FailureClassifierItem  FailureKind = "classifier_item"
	FailureUnmappedLabel   FailureKind = "unmapped_label"
	FailureTranslation     FailureKind = "translation"
)

// RecoverableFailure 在流水线内部被消化的失败，不会作为错误返回给调用方
type RecoverableFailure struct {
	Kind  FailureKind
	Index int
	Err   error
}

func (f *RecoverableFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s (row %d)", f.Kind, f.Index)
	}
	return fmt.Sprintf("%s (row %d): %v", f.Kind, f.Index, f.Err)
}

func (f *RecoverableFailure) Unwrap() error {
	return f.Err
}

// ItemOutcome 单条文本的分类结果或可恢复失败，二者只会有一个生效
type ItemOutcome struct {
	Result  ClassificationResult
	Failure *RecoverableFailure
	// TranslationFailure 翻译失败不影响分类，只作记录
	TranslationFailure *RecoverableFailure
}

// Resolve 按降级策略得到最终结果：可恢复失败变成 (NEUTRAL, 0.0)，
// 无法映射的标签保留分类器分数
func (o ItemOutcome) Resolve() ClassificationResult {
	if o.Failure != nil && o.Failure.Kind != FailureUnmappedLabel {
		return DegradedResult
	}
	return o.Result
}
