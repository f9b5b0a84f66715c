package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/fileconv-go/internal/domain"
)

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
backend:
  base_url: http://localhost:9999
limits:
  too_many_policy: reject
  mixed_policy: relaxed
progress:
  processing: 3s
download:
  dir: ` + dir + `
history:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", config.Backend.BaseURL)
	assert.Equal(t, domain.TooManyReject, config.Limits.TooManyPolicy)
	assert.Equal(t, domain.MixedRelaxed, config.Limits.MixedPolicy)
	assert.Equal(t, 3*time.Second, config.Progress.Processing)
	assert.Equal(t, dir, config.Download.Dir)
	assert.False(t, config.History.Enabled)

	// Untouched keys keep their defaults
	assert.Equal(t, 4, config.Limits.MaxFiles)
	assert.Equal(t, "files", config.Backend.FileField)
	assert.Equal(t, 1500*time.Millisecond, config.Progress.Upload)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8090\n"), 0644))

	t.Setenv("FILECONV_BACKEND_BASE_URL", "http://env-backend")
	t.Setenv("FILECONV_LIMITS_MAX_FILES", "2")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env-backend", config.Backend.BaseURL)
	assert.Equal(t, 2, config.Limits.MaxFiles)
}

func TestLoadConfig_InvalidPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  mixed_policy: loose\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mixed_policy")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Downloads"), expandPath("~/Downloads"))
	assert.Equal(t, home+"/Downloads", expandPath("$HOME/Downloads"))
	assert.Equal(t, "/tmp/x", expandPath("/tmp/x"))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := domain.DefaultConfig()
	config.Backend.BaseURL = "http://saved"

	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://saved", loaded.Backend.BaseURL)
}
