package model

import (
	"github.com/pkg/errors"
)

var (
	// ErrMalformedInput 数据集无法解析为表格数据
	ErrMalformedInput = errors.New("无法解析为表格数据")
	// ErrNoTextColumn 未找到文本列
	ErrNoTextColumn = errors.New("未找到合适的文本列，请确认数据中包含文本列")
	// ErrNoGroundTruth 需要验证但没有可用的标注值
	ErrNoGroundTruth = errors.New("没有可用于验证的标注数据")
	// ErrClassifierUnavailable 分类器未配置或无法构建
	ErrClassifierUnavailable = errors.New("分类器不可用")
)
