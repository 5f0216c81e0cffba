package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "EdChat", cfg.Name)
	assert.Equal(t, "0.0.0.0:5005", cfg.ListenAddr)
	assert.Empty(t, cfg.WSListenAddr)
	assert.Equal(t, "/ws", cfg.WSPath)
	assert.Equal(t, 4096, cfg.MaxLineSize)
	assert.Equal(t, 256, cfg.SendQueueSize)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
name: MyChat
listen-addr: 127.0.0.1:6006
ws-listen-addr: 127.0.0.1:6007
metrics-addr: 127.0.0.1:9091
max-line-size: 1024
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "MyChat", cfg.Name)
	assert.Equal(t, "127.0.0.1:6006", cfg.ListenAddr)
	assert.Equal(t, "127.0.0.1:6007", cfg.WSListenAddr)
	assert.Equal(t, "127.0.0.1:9091", cfg.MetricsAddr)
	assert.Equal(t, 1024, cfg.MaxLineSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// 未出现在文件里的字段保持缺省值。
	assert.Equal(t, "/ws", cfg.WSPath)
	assert.Equal(t, 256, cfg.SendQueueSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
