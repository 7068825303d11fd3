package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"sentiment-lens/pkg/model"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// 常见的说明类工作表，读取时跳过
var skipSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

// loadExcel 读取第一个数据工作表，首行为表头。
// 全部为整数的列转为 int64，全部为数字的列转为 float64，其余为字符串列
func loadExcel(path string) (*model.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(model.ErrMalformedInput, "打开 %s 失败: %v", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Wrapf(model.ErrMalformedInput, "%s 中没有工作表", filepath.Base(path))
	}

	var sheetName string
	for _, sheet := range sheets {
		if !skipSheets[strings.ToLower(sheet)] {
			sheetName = sheet
			break
		}
	}
	// 全部是说明表时取最后一个
	if sheetName == "" {
		sheetName = sheets[len(sheets)-1]
	}

	allRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrapf(model.ErrMalformedInput, "读取工作表 %s 失败: %v", sheetName, err)
	}
	if len(allRows) == 0 {
		return nil, errors.Wrapf(model.ErrMalformedInput, "工作表 %s 为空", sheetName)
	}

	headers := uniqueHeaders(allRows[0])
	records := allRows[1:]
	for i, row := range records {
		if len(row) < len(headers) {
			records[i] = append(row, make([]string, len(headers)-len(row))...)
		} else if len(row) > len(headers) {
			records[i] = row[:len(headers)]
		}
	}

	ds := &model.Dataset{Columns: make([]model.Column, len(headers))}
	ds.Rows = make([]model.Row, len(records))
	for i := range records {
		ds.Rows[i] = model.Row{Index: i, Values: make(map[string]any, len(headers))}
	}
	for j, name := range headers {
		cells := make([]string, len(records))
		for i, row := range records {
			cells[i] = row[j]
		}
		kind, values := inferColumn(cells)
		ds.Columns[j] = model.Column{Name: name, Kind: kind}
		for i, v := range values {
			ds.Rows[i].Values[name] = v
		}
	}

	zap.S().Infof("已加载 %s (工作表 %s): %d 行, %d 列", filepath.Base(path), sheetName, ds.Len(), len(headers))
	return ds, nil
}

func inferColumn(cells []string) (model.ColumnKind, []any) {
	allInt, allFloat, nonEmpty := true, true, 0
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseInt(c, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(c, 64); err != nil {
			allFloat = false
		}
	}

	values := make([]any, len(cells))
	kind := model.ColumnKindOther
	if nonEmpty == 0 || !allFloat {
		kind = model.ColumnKindString
	}
	for i, c := range cells {
		trimmed := strings.TrimSpace(c)
		switch {
		case trimmed == "":
			values[i] = nil
		case kind == model.ColumnKindString:
			values[i] = c
		case allInt:
			values[i], _ = strconv.ParseInt(trimmed, 10, 64)
		default:
			values[i], _ = strconv.ParseFloat(trimmed, 64)
		}
	}
	return kind, values
}

// uniqueHeaders 空表头命名为 column_N，重名追加 _1、_2
func uniqueHeaders(raw []string) []string {
	used := make(map[string]bool, len(raw))
	headers := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}
