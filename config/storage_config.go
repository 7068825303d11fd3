package config

import (
	"time"

	"github.com/pkg/errors"
)

// StorageConfig 远程数据集来源（http/https、s3://）
type StorageConfig struct {
	S3   *S3Config   `json:"s3" yaml:"s3"`
	HTTP *HTTPConfig `json:"http" yaml:"http"`
}

type S3Config struct {
	Region   string `json:"region" yaml:"region"`
	Endpoint string `json:"endpoint" yaml:"endpoint"` // MinIO 等兼容服务
}

type HTTPConfig struct {
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
	MaxBytes int64         `json:"maxBytes" yaml:"maxBytes"`
}

func (s *StorageConfig) Validate() []error {
	var errs = make([]error, 0)
	if s.HTTP != nil {
		if s.HTTP.Timeout <= 0 {
			errs = append(errs, errors.Errorf("storage.http.timeout 必须大于 0"))
		}
		if s.HTTP.MaxBytes <= 0 {
			errs = append(errs, errors.Errorf("storage.http.maxBytes 必须大于 0"))
		}
	}
	return errs
}

func NewDefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		S3: &S3Config{Region: "us-east-1"},
		HTTP: &HTTPConfig{
			Timeout:  2 * time.Minute,
			MaxBytes: 100 * 1024 * 1024,
		},
	}
}
