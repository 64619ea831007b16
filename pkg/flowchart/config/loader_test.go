package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowchart/pkg/flowchart/config"
)

const sampleYAML = `
llm:
  provider: mock
  model: gpt-4o-mini
  temperature: 0.3
retry:
  max_attempts: 2
  delay: 10ms
output:
  dir: charts
  format: svg
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		cfg, err := config.FromFile(writeFile(t, dir, "c.yaml", sampleYAML))
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", cfg.String("llm.model", ""))
		assert.Equal(t, 2, cfg.Int("retry.max_attempts", 0))
		assert.Equal(t, 10*time.Millisecond, cfg.Duration("retry.delay", 0))
	})

	t.Run("yml", func(t *testing.T) {
		cfg, err := config.FromFile(writeFile(t, dir, "c.yml", "log:\n  level: debug\n"))
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.String("log.level", ""))
	})

	t.Run("json", func(t *testing.T) {
		cfg, err := config.FromFile(writeFile(t, dir, "c.json", `{"llm": {"max_tokens": 256}, "parse": {"strict_kinds": true}}`))
		require.NoError(t, err)
		assert.Equal(t, 256, cfg.Int("llm.max_tokens", 0))
		assert.True(t, cfg.Bool("parse.strict_kinds", false))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := config.FromFile(writeFile(t, dir, "c.toml", "x = 1"))
		assert.ErrorContains(t, err, "unsupported extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.FromFile(filepath.Join(dir, "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := config.FromFile(writeFile(t, dir, "bad.yaml", "llm: [unclosed"))
		assert.ErrorContains(t, err, "parse yaml")
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := config.FromFile(writeFile(t, dir, "bad.json", "{"))
		assert.ErrorContains(t, err, "parse json")
	})
}

func TestFromYAML_Empty(t *testing.T) {
	cfg, err := config.FromYAML(nil)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Raw())
}

func TestLoad(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "custom.yaml", sampleYAML)
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "mock", cfg.String("llm.provider", ""))
	})

	t.Run("default file in working directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "flowchart.yml", "output:\n  format: mmd\n")
		t.Chdir(dir)

		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, "mmd", cfg.String("output.format", ""))
	})

	t.Run("nothing to load", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Empty(t, cfg.Raw())
	})
}
