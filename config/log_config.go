package config

import (
	"github.com/pkg/errors"
)

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // json 或 console
}

func (l *LogConfig) Validate() []error {
	var errs = make([]error, 0)
	switch l.Format {
	case "", "json", "console":
	default:
		errs = append(errs, errors.Errorf("log.format 只能是 json 或 console, 当前为 %q", l.Format))
	}
	return errs
}

func NewDefaultLogConfig() *LogConfig {
	return &LogConfig{Level: "info", Format: "console"}
}
