package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "adpscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
input:
  compression: snappy
  mmap: true
scan:
  max_count: 25
  parallelism: 4
  legacy: true
logging:
  level: debug
  format: json
metrics:
  textfile_path: /tmp/adp.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "snappy", cfg.Input.Compression)
	assert.True(t, cfg.Input.MMap)
	assert.Equal(t, 32*1024, cfg.Input.BufferSizeBytes)
	assert.Equal(t, 25, cfg.Scan.MaxCount)
	assert.Equal(t, 4, cfg.Scan.Parallelism)
	assert.True(t, cfg.Scan.Legacy)
	assert.True(t, cfg.Scan.OneBased)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/adp.prom", cfg.Metrics.TextfilePath)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "scan:\n  one_based: true\n"))
	require.NoError(t, err)

	expected := Default()
	expected.Scan.OneBased = true
	assert.Equal(t, expected, cfg)
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{"compression", "input:\n  compression: lz4\n", "input config: unknown compression type 'lz4'"},
		{"mmap and directio", "input:\n  mmap: true\n  direct_io: true\n", "mutually exclusive"},
		{"buffer size", "input:\n  buffer_size_bytes: 0\n", "buffer_size_bytes must be positive"},
		{"parallelism", "scan:\n  parallelism: 0\n", "scan config: parallelism must be at least 1"},
		{"level", "logging:\n  level: loud\n", "invalid log level"},
		{"format", "logging:\n  format: xml\n", "invalid log format"},
		{"yaml", "scan: [", "failed to parse config file"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, test.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.contains)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateDoesNotModify(t *testing.T) {
	cfg := Default()
	cfg.Scan.Legacy = true
	expected := *cfg

	require.NoError(t, cfg.Validate())
	assert.Equal(t, expected, *cfg)
	assert.False(t, cfg.Scan.OneBased)
}
