package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 4, cfg.Readers)
	require.Equal(t, 1, cfg.Writers)
	require.True(t, cfg.AutoResize)
	require.Equal(t, 2*time.Second, cfg.Duration)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.toml")
	body := `
readers = 16
writers = 4
duration = "10s"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Readers)
	require.Equal(t, 4, cfg.Writers)
	require.Equal(t, 10*time.Second, cfg.Duration)
	// Fields the file didn't set fall back to DefaultConfig's values.
	require.Equal(t, DefaultConfig().TableSize, cfg.TableSize)
	require.Equal(t, DefaultConfig().KeySpace, cfg.KeySpace)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
