package config

import (
	"github.com/pkg/errors"
)

// CompareConfig compare 子命令要对比的配置组合
type CompareConfig struct {
	Profiles []ProfileConfig `json:"profiles" yaml:"profiles"`
}

// ProfileConfig 一组流水线参数，未设置的阈值沿用 pipeline 配置
type ProfileConfig struct {
	Name          string   `json:"name" yaml:"name"`
	Translate     bool     `json:"translate" yaml:"translate"`
	LowThreshold  *float64 `json:"lowThreshold" yaml:"lowThreshold"`
	HighThreshold *float64 `json:"highThreshold" yaml:"highThreshold"`
}

func (c *CompareConfig) Validate() []error {
	var errs = make([]error, 0)
	seen := make(map[string]bool, len(c.Profiles))
	for i, p := range c.Profiles {
		if p.Name == "" {
			errs = append(errs, errors.Errorf("compare.profiles[%d].name 不能为空", i))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, errors.Errorf("compare.profiles 中存在重复的名称 %q", p.Name))
		}
		seen[p.Name] = true
	}
	return errs
}

func NewDefaultCompareConfig() *CompareConfig {
	return &CompareConfig{
		Profiles: []ProfileConfig{
			{Name: "baseline"},
			{Name: "translated", Translate: true},
		},
	}
}
