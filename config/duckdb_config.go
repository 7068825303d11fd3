package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const duckDBInMemory = ":memory:"

type DuckDBConfig struct {
	DBPath  string `json:"dbPath" yaml:"dbPath"`   // DuckDB 数据库文件路径，为空或 :memory: 时使用内存库
	Threads int    `json:"threads" yaml:"threads"` // DuckDB 工作线程数，0 表示由 DuckDB 自行决定
}

func (d *DuckDBConfig) Validate() []error {
	var errs = make([]error, 0)
	if d.Threads < 0 {
		errs = append(errs, errors.Errorf("DuckDB 线程数不能为负数: %d", d.Threads))
	}
	if d.InMemory() {
		return errs
	}

	// 确保目录存在
	dir := filepath.Dir(d.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		errs = append(errs, errors.Errorf("创建 DuckDB 目录失败: %v", err))
	}

	return errs
}

func NewDefaultDuckDBConfig() *DuckDBConfig {
	return &DuckDBConfig{
		DBPath: duckDBInMemory,
	}
}

// InMemory 数据集只在单次请求内使用，默认不落盘
func (d *DuckDBConfig) InMemory() bool {
	return d.DBPath == "" || d.DBPath == duckDBInMemory
}

func (d *DuckDBConfig) DSN() string {
	if d.InMemory() {
		return ""
	}
	return d.DBPath
}
