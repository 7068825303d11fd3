package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"sentiment-lens/pkg/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// 导出时追加的派生列
var derivedColumns = []struct {
	name   string
	dbType string
}{
	{"row_index", "BIGINT"},
	{"text", "VARCHAR"},
	{"clean_text", "VARCHAR"},
	{"predicted_sentiment", "VARCHAR"},
	{"confidence_score", "DOUBLE"},
	{"true_sentiment", "VARCHAR"},
}

// Exporter 通过 DuckDB 的 COPY 把处理后的数据集写成 csv/parquet/json
type Exporter struct {
	db *sql.DB
}

func NewExporter(duck *sql.DB) *Exporter {
	return &Exporter{db: duck}
}

// Export 原始列以字符串形式保留，与派生列重名的原始列加 source_ 前缀
func (e *Exporter) Export(ctx context.Context, ds *model.Dataset, path string) error {
	if e.db == nil {
		return errors.New("DuckDB 连接未初始化")
	}
	copyOpts, err := copyOptions(path)
	if err != nil {
		return err
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return errors.Wrap(err, "获取 DuckDB 连接失败")
	}
	defer conn.Close()

	table := "sentiment_export_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	sourceNames := exportNames(ds.ColumnNames())

	defs := make([]string, 0, len(sourceNames)+len(derivedColumns))
	for _, name := range sourceNames {
		defs = append(defs, quoteIdent(name)+" VARCHAR")
	}
	for _, c := range derivedColumns {
		defs = append(defs, quoteIdent(c.name)+" "+c.dbType)
	}
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE TEMP TABLE %s (%s)", table, strings.Join(defs, ", "))); err != nil {
		return errors.Wrap(err, "创建导出表失败")
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+table); err != nil {
			zap.S().Warnf("删除导出表失败: %v", err)
		}
	}()

	if err := insertRows(ctx, conn, table, ds, len(defs)); err != nil {
		return err
	}

	copySQL := fmt.Sprintf("COPY %s TO %s (%s)", table, quoteLiteral(path), copyOpts)
	if _, err := conn.ExecContext(ctx, copySQL); err != nil {
		return errors.Wrapf(err, "导出到 %s 失败", path)
	}
	zap.S().Infof("已导出 %d 行到 %s", ds.Len(), path)
	return nil
}

func insertRows(ctx context.Context, conn *sql.Conn, table string, ds *model.Dataset, width int) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "开启事务失败")
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", width), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders))
	if err != nil {
		return errors.Wrap(err, "准备插入语句失败")
	}
	defer stmt.Close()

	columns := ds.ColumnNames()
	args := make([]any, width)
	for _, row := range ds.Rows {
		for i, name := range columns {
			args[i] = cellString(row.Values[name])
		}
		k := len(columns)
		args[k] = row.Index
		args[k+1] = row.Text
		args[k+2] = row.CleanText
		args[k+3] = nullString(string(row.PredictedSentiment))
		args[k+4] = row.ConfidenceScore
		args[k+5] = nullString(string(row.TrueSentiment))
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "写入第 %d 行失败", row.Index)
		}
	}
	return errors.Wrap(tx.Commit(), "提交导出数据失败")
}

func copyOptions(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "FORMAT csv, HEADER", nil
	case ".parquet":
		return "FORMAT parquet", nil
	case ".json", ".jsonl", ".ndjson":
		return "FORMAT json", nil
	}
	return "", errors.Errorf("不支持的导出格式 %q, 可选 .csv/.parquet/.json", filepath.Ext(path))
}

// exportNames DuckDB 列名不区分大小写，与派生列或彼此重名时改名
func exportNames(names []string) []string {
	used := make(map[string]bool, len(names)+len(derivedColumns))
	for _, c := range derivedColumns {
		used[c.name] = true
	}
	out := make([]string, len(names))
	for i, name := range names {
		candidate := name
		if used[strings.ToLower(candidate)] {
			candidate = "source_" + name
		}
		base := candidate
		for n := 1; used[strings.ToLower(candidate)]; n++ {
			candidate = fmt.Sprintf("%s_%d", base, n)
		}
		used[strings.ToLower(candidate)] = true
		out[i] = candidate
	}
	return out
}

func cellString(v any) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	return sql.NullString{String: s, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
