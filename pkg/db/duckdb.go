package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"sentiment-lens/config"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var duckDB *sql.DB
var duckDBOnce sync.Once

// Open 打开一个独立的 duckdb 连接，默认使用内存库
func Open(ctx context.Context, cfg *config.DuckDBConfig) (*sql.DB, error) {
	conn, err := sql.Open("duckdb", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "连接 duckdb 失败")
	}

	// 测试连接
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "duckdb 连接测试失败")
	}

	if cfg.Threads > 0 {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("SET threads TO %d", cfg.Threads)); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "设置 duckdb 线程数失败")
		}
	}
	return conn, nil
}

// InitDuckDB 初始化全局 duckdb 连接
func InitDuckDB(cfg *config.DuckDBConfig) error {
	var err error
	duckDBOnce.Do(func() {
		duckDB, err = Open(context.Background(), cfg)
		if err != nil {
			zap.S().Errorf("初始化 duckdb 失败: %v", err)
			return
		}
		zap.S().Debugf("duckdb 初始化完成, 路径: %q", cfg.DBPath)
	})
	return err
}

// GetDuckDB 获取 DuckDB 连接，未初始化时返回 nil
func GetDuckDB() *sql.DB {
	return duckDB
}

// CloseDuckDB 关闭全局连接
func CloseDuckDB() error {
	if duckDB == nil {
		return nil
	}
	return duckDB.Close()
}
