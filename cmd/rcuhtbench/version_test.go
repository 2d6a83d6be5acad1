package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadOwnModule(t *testing.T) {
	dir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, os.Chdir(dir)) })

	path, goVersion, err := readOwnModule()
	require.NoError(t, err)
	require.Equal(t, "github.com/kolkov/rcuht", path)
	require.NotEmpty(t, goVersion)
}

func TestReadOwnModuleErrorsOutsideAnyModule(t *testing.T) {
	dir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, os.Chdir(dir)) })

	sub := filepath.Join(t.TempDir())
	require.NoError(t, os.Chdir(sub))

	_, _, err = readOwnModule()
	require.Error(t, err)
}
