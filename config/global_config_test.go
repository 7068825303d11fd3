package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	assert.Empty(t, cfg.Validate())
	assert.Equal(t, 16, cfg.PipelineConfig.BatchSize)
	assert.Equal(t, 512, cfg.PipelineConfig.MaxInputChars)
	assert.InDelta(t, 0.55, cfg.PipelineConfig.LowThreshold, 1e-9)
	assert.InDelta(t, 0.70, cfg.PipelineConfig.HighThreshold, 1e-9)
	assert.True(t, cfg.DuckDBConfig.InMemory())
}

func TestTryLoadFromDisk_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
pipeline:
  batchSize: 8
  concurrency: 4
classifier:
  provider: anthropic
  anthropic:
    apiKey: test-key
translator:
  timeout: 5s
log:
  level: debug
`)
	cfg, err := TryLoadFromDisk(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.PipelineConfig.BatchSize)
	assert.Equal(t, 4, cfg.PipelineConfig.Concurrency)
	// 未出现在文件中的字段保留默认值
	assert.Equal(t, 512, cfg.PipelineConfig.MaxInputChars)
	assert.Equal(t, "anthropic", cfg.ClassifierConfig.Provider)
	assert.Equal(t, "test-key", cfg.ClassifierConfig.Anthropic.APIKey)
	assert.Equal(t, 5*time.Second, cfg.TranslatorConfig.Timeout)
	assert.Equal(t, "debug", cfg.LogConfig.Level)
	assert.Empty(t, cfg.Validate())
}

func TestTryLoadFromDisk_MissingFile(t *testing.T) {
	_, err := TryLoadFromDisk(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadOrDefault_FallsBackWhenMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, NewDefaultGlobalConfig().PipelineConfig, cfg.PipelineConfig)
}

func TestValidate_ReportsEverySection(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.PipelineConfig.BatchSize = 0
	cfg.PipelineConfig.LowThreshold = 0.9
	cfg.ClassifierConfig.Provider = "bert"
	cfg.TranslatorConfig.Enabled = true
	cfg.TranslatorConfig.APIKey = ""

	errs := cfg.Validate()
	// batchSize、阈值顺序、provider、translator apiKey
	assert.Len(t, errs, 4)
}

func TestCompareConfig_DuplicateNames(t *testing.T) {
	c := &CompareConfig{Profiles: []ProfileConfig{{Name: "a"}, {Name: "a"}, {}}}
	assert.Len(t, c.Validate(), 2)
}

func TestTryLoadFromDisk_PipelineValidateKey(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
pipeline:
  validate: false
  translate: true
`)
	cfg, err := TryLoadFromDisk(path)
	require.NoError(t, err)

	assert.False(t, cfg.PipelineConfig.ValidateOnAnalyze)
	assert.True(t, cfg.PipelineConfig.Translate)
	assert.True(t, NewDefaultPipelineConfig().ValidateOnAnalyze)
	assert.Empty(t, cfg.PipelineConfig.Validate())
}

func TestPipelineConfig_SampleTextCharsMustBePositive(t *testing.T) {
	p := NewDefaultPipelineConfig()
	p.SampleTextChars = 0
	errs := p.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "sampleTextChars")

	p.SampleTextChars = 1
	assert.Empty(t, p.Validate())
}
