package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type IConfig interface {
	Validate() []error
}

type GlobalConfig struct {
	DuckDBConfig     *DuckDBConfig     `json:"duckdb" yaml:"duckdb"`
	PipelineConfig   *PipelineConfig   `json:"pipeline" yaml:"pipeline"`
	ClassifierConfig *ClassifierConfig `json:"classifier" yaml:"classifier"`
	TranslatorConfig *TranslatorConfig `json:"translator" yaml:"translator"`
	StorageConfig    *StorageConfig    `json:"storage" yaml:"storage"`
	ServerConfig     *ServerConfig     `json:"server" yaml:"server"`
	LogConfig        *LogConfig        `json:"log" yaml:"log"`
	CompareConfig    *CompareConfig    `json:"compare" yaml:"compare"`
}

func (g *GlobalConfig) Validate() []error {
	var errs = make([]error, 0)
	for _, c := range g.sections() {
		if es := c.Validate(); len(es) > 0 {
			errs = append(errs, es...)
		}
	}
	return errs
}

// sections 返回所有非空的配置段
func (g *GlobalConfig) sections() []IConfig {
	var out []IConfig
	if g.DuckDBConfig != nil {
		out = append(out, g.DuckDBConfig)
	}
	if g.PipelineConfig != nil {
		out = append(out, g.PipelineConfig)
	}
	if g.ClassifierConfig != nil {
		out = append(out, g.ClassifierConfig)
	}
	if g.TranslatorConfig != nil {
		out = append(out, g.TranslatorConfig)
	}
	if g.StorageConfig != nil {
		out = append(out, g.StorageConfig)
	}
	if g.ServerConfig != nil {
		out = append(out, g.ServerConfig)
	}
	if g.LogConfig != nil {
		out = append(out, g.LogConfig)
	}
	if g.CompareConfig != nil {
		out = append(out, g.CompareConfig)
	}
	return out
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		DuckDBConfig:     NewDefaultDuckDBConfig(),
		PipelineConfig:   NewDefaultPipelineConfig(),
		ClassifierConfig: NewDefaultClassifierConfig(),
		TranslatorConfig: NewDefaultTranslatorConfig(),
		StorageConfig:    NewDefaultStorageConfig(),
		ServerConfig:     NewDefaultServerConfig(),
		LogConfig:        NewDefaultLogConfig(),
		CompareConfig:    NewDefaultCompareConfig(),
	}
}

func TryLoadFromDisk(configFilePath string) (*GlobalConfig, error) {
	_, err := os.Stat(configFilePath)
	if err != nil {
		return nil, err
	}
	dir, file := filepath.Split(configFilePath)
	fileType := filepath.Ext(file)
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(strings.TrimSuffix(file, fileType))
	v.SetConfigType(strings.TrimPrefix(fileType, "."))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
		return nil, errors.Errorf("解析配置文件错误:%s", err.Error())
	}
	cfg := NewDefaultGlobalConfig()
	tagName := strings.TrimPrefix(fileType, ".")
	if tagName == "yml" {
		tagName = "yaml"
	}
	if tagName != "json" && tagName != "yaml" {
		tagName = "yaml"
	}
	if err := v.Unmarshal(cfg, func(config *mapstructure.DecoderConfig) {
		config.TagName = tagName
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault 配置文件不存在时使用内置默认值，其它错误照常返回
func LoadOrDefault(configFilePath string) (*GlobalConfig, error) {
	cfg, err := TryLoadFromDisk(configFilePath)
	if err == nil {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		zap.S().Debugf("配置文件 %s 不存在，使用默认配置", configFilePath)
		return NewDefaultGlobalConfig(), nil
	}
	return nil, err
}
