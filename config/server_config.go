package config

import (
	"github.com/pkg/errors"
)

type ServerConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	MaxUploadBytes    int64    `json:"maxUploadBytes" yaml:"maxUploadBytes"`
	AllowedExtensions []string `json:"allowedExtensions" yaml:"allowedExtensions"`
}

func (s *ServerConfig) Validate() []error {
	var errs = make([]error, 0)
	if s.Addr == "" {
		errs = append(errs, errors.Errorf("server.addr 不能为空"))
	}
	if s.MaxUploadBytes <= 0 {
		errs = append(errs, errors.Errorf("server.maxUploadBytes 必须大于 0"))
	}
	return errs
}

func NewDefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:              ":7860",
		MaxUploadBytes:    16 * 1024 * 1024,
		AllowedExtensions: []string{".csv"},
	}
}
