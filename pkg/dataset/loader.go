// Package dataset 把本地或远程的表格文件读成 model.Dataset。
// csv/parquet/json 交给 DuckDB 推断列类型，xlsx 通过 excelize 读取。
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sentiment-lens/config"
	"sentiment-lens/pkg/model"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Format 支持的文件格式
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatParquet Format = "parquet"
	FormatJSON    Format = "json"
	FormatExcel   Format = "xlsx"
)

// DetectFormat 按扩展名判断文件格式，没有扩展名时按 csv 处理
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".parquet":
		return FormatParquet, nil
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON, nil
	case ".xlsx", ".xlsm":
		return FormatExcel, nil
	default:
		return "", errors.Wrapf(model.ErrMalformedInput, "不支持的文件格式 %q", ext)
	}
}

type Loader struct {
	db      *sql.DB
	storage *config.StorageConfig

	s3Once   sync.Once
	s3Client *s3.Client
	s3Err    error
}

func NewLoader(duck *sql.DB, storage *config.StorageConfig) *Loader {
	if storage == nil {
		storage = config.NewDefaultStorageConfig()
	}
	return &Loader{
		db:      duck,
		storage: storage,
	}
}

// Load 读取数据集。source 可以是本地路径、http(s) 地址或 s3://bucket/key
func (l *Loader) Load(ctx context.Context, source string) (*model.Dataset, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.loadRemote(ctx, source, l.downloadFromURL)
	case strings.HasPrefix(source, "s3://"):
		return l.loadRemote(ctx, source, l.downloadFromS3)
	}

	if _, err := os.Stat(source); err != nil {
		return nil, errors.Wrapf(err, "读取数据集 %s 失败", source)
	}
	ds, err := l.LoadFile(ctx, source)
	if err != nil {
		return nil, err
	}
	ds.Source = source
	return ds, nil
}

// LoadReader 读取上传的内容，name 只用来判断格式
func (l *Loader) LoadReader(ctx context.Context, name string, r io.Reader) (*model.Dataset, error) {
	path, cleanup, err := writeTemp(name, r, 0)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ds, err := l.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	ds.Source = name
	return ds, nil
}

// LoadFile 读取本地文件
func (l *Loader) LoadFile(ctx context.Context, path string) (*model.Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if format == FormatExcel {
		return loadExcel(path)
	}

	query, err := readQuery(format, path)
	if err != nil {
		return nil, err
	}
	return l.query(ctx, query, path)
}

func readQuery(format Format, path string) (string, error) {
	literal := quoteLiteral(path)
	switch format {
	case FormatCSV:
		return fmt.Sprintf("SELECT * FROM read_csv_auto(%s, header = true)", literal), nil
	case FormatTSV:
		return fmt.Sprintf("SELECT * FROM read_csv_auto(%s, header = true, delim = '\t')", literal), nil
	case FormatParquet:
		return fmt.Sprintf("SELECT * FROM read_parquet(%s)", literal), nil
	case FormatJSON:
		return fmt.Sprintf("SELECT * FROM read_json_auto(%s)", literal), nil
	}
	return "", errors.Wrapf(model.ErrMalformedInput, "不支持的文件格式 %q", format)
}

func (l *Loader) query(ctx context.Context, query, path string) (*model.Dataset, error) {
	if l.db == nil {
		return nil, errors.New("DuckDB 连接未初始化")
	}

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(model.ErrMalformedInput, "解析 %s 失败: %v", filepath.Base(path), err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrap(err, "读取列信息失败")
	}
	columns := make([]model.Column, len(types))
	for i, ct := range types {
		columns[i] = model.Column{Name: ct.Name(), Kind: columnKind(ct.DatabaseTypeName())}
	}

	ds := &model.Dataset{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrapf(model.ErrMalformedInput, "读取第 %d 行失败: %v", len(ds.Rows)+1, err)
		}

		row := model.Row{Index: len(ds.Rows), Values: make(map[string]any, len(columns))}
		for i, c := range columns {
			row.Values[c.Name] = normalizeValue(values[i])
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedInput, "解析 %s 失败: %v", filepath.Base(path), err)
	}

	zap.S().Infof("已加载 %s: %d 行, %d 列", filepath.Base(path), ds.Len(), len(columns))
	return ds, nil
}

// columnKind 只区分字符串列和其它列
func columnKind(dbType string) model.ColumnKind {
	switch strings.ToUpper(dbType) {
	case "VARCHAR", "TEXT", "STRING", "CHAR", "BPCHAR":
		return model.ColumnKindString
	}
	return model.ColumnKindOther
}

// normalizeValue 把 duckdb 特有的数值类型转为 float64
func normalizeValue(v any) any {
	switch x := v.(type) {
	case duckdb.Decimal:
		return x.Float64()
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f
	case []byte:
		return string(x)
	}
	return v
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
