package cmd

import (
	"context"
	"errors"
	"fmt"

	"sentiment-lens/config"
	"sentiment-lens/pkg/classifier"
	"sentiment-lens/pkg/dataset"
	"sentiment-lens/pkg/db"
	"sentiment-lens/pkg/logger"
	"sentiment-lens/pkg/metrics"
	"sentiment-lens/pkg/service"
	"sentiment-lens/pkg/translator"

	"go.uber.org/zap"
)

type rootOptions struct {
	configFilePath string
	logLevel       string

	cfg *config.GlobalConfig
}

// load 读取配置并初始化日志，子命令在此之后才能使用 zap.S()
func (o *rootOptions) load() error {
	cfg, err := config.LoadOrDefault(o.configFilePath)
	if err != nil {
		return fmt.Errorf("读取本地配置文件错误: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogConfig.Level = o.logLevel
	}
	if _, err := logger.Init(cfg.LogConfig.Level, cfg.LogConfig.Format); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// application 一次命令运行所需的全部组件
type application struct {
	cfg      *config.GlobalConfig
	metrics  *metrics.Metrics
	loader   *dataset.Loader
	exporter *dataset.Exporter
	pipeline *service.PipelineService
}

func newApplication(ctx context.Context, cfg *config.GlobalConfig) (*application, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("本地配置文件验证错误: %w", errors.Join(errs...))
	}

	// 初始化 DuckDB
	if err := db.InitDuckDB(cfg.DuckDBConfig); err != nil {
		return nil, fmt.Errorf("DuckDB 连接错误: %w", err)
	}

	c, err := classifier.New(cfg.ClassifierConfig)
	if err != nil {
		return nil, err
	}
	t, err := translator.New(ctx, cfg.TranslatorConfig)
	if err != nil {
		return nil, fmt.Errorf("初始化翻译服务失败: %w", err)
	}

	m := metrics.New()
	duck := db.GetDuckDB()
	return &application{
		cfg:      cfg,
		metrics:  m,
		loader:   dataset.NewLoader(duck, cfg.StorageConfig),
		exporter: dataset.NewExporter(duck),
		pipeline: service.NewPipelineServiceFromConfig(cfg, c, t, m),
	}, nil
}

func (a *application) close() {
	if err := db.CloseDuckDB(); err != nil {
		zap.S().Warnf("关闭 DuckDB 失败: %v", err)
	}
}
