package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig().Server.Port, cfg.Server.Port)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8088
  shutdown_timeout: 30s
retrieval:
  top_k: 3
embedding:
  model: text-embedding-004
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, "text-embedding-004", cfg.Embedding.Model)
	// Untouched fields keep defaults.
	assert.Equal(t, 500, cfg.Retrieval.ChunkTokenBudget)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 8088\n")

	t.Setenv("RECALLD_SERVER_PORT", "9999")
	t.Setenv("RECALLD_EMBEDDING_API_KEY", "sk-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "sk-from-env", cfg.Embedding.APIKey.Value())
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := writeConfigFile(t, "retrieval:\n  top_k: 0\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top_k")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a map\n")

	_, err := Load(path)
	require.Error(t, err)
}
