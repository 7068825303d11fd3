package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cast"
)

// isMissing 对应表格中的空单元格：nil 或 NaN
func isMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// displayString 单元格值的字符串形式。浮点数保留小数点（4.0 而不是 4），
// 与表格工具导出的数值文本一致，整数与布尔值按字面输出
func displayString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
