package model

// ColumnKind 列类型，仅用于列探测的启发式判断
type ColumnKind int

const (
	ColumnKindOther ColumnKind = iota
	ColumnKindString
)

// Column 数据集中的一列
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// Row 数据集中的一行。Values 来自原始输入，任何阶段都不修改；
// 派生字段由各阶段追加到新的 Row 副本上
type Row struct {
	Index  int            `json:"index"` // 原始数据中的行号（从 0 开始）
	Values map[string]any `json:"values"`

	Text               string    `json:"text"`
	CleanText          string    `json:"cleanText"`
	PredictedSentiment Sentiment `json:"predictedSentiment,omitempty"`
	ConfidenceScore    float64   `json:"confidenceScore"`
	TrueSentiment      Sentiment `json:"trueSentiment,omitempty"`
}

// HasTruth 是否带有可用的标注标签
func (r Row) HasTruth() bool {
	return r.TrueSentiment.Valid()
}

// Dataset 有序的行集合，加载后不可变
type Dataset struct {
	Source  string   `json:"source"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// ColumnNames 按原始顺序返回列名
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column 按名称查找列
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Len 行数
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// WithRows 返回共享列定义、替换行集合的新数据集
func (d *Dataset) WithRows(rows []Row) *Dataset {
	return &Dataset{
		Source:  d.Source,
		Columns: d.Columns,
		Rows:    rows,
	}
}

// CloneRows 复制行切片，派生字段的修改不会影响原数据集
func (d *Dataset) CloneRows() []Row {
	out := make([]Row, len(d.Rows))
	copy(out, d.Rows)
	return out
}
