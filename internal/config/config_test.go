package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	app, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Defaults(), app)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := `
listen: ":9090"
storage:
  driver: memory
  autosave: false
layout:
  subdivisions: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	app, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", app.Listen)
	assert.Equal(t, "memory", app.Storage.Driver)
	assert.False(t, app.Storage.Autosave)
	assert.Equal(t, 2, app.Layout.Subdivisions)
	// untouched keys keep their defaults
	assert.Equal(t, "fail", app.Storage.OnLoadError)
	assert.Equal(t, "multical.db", app.Storage.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: memory\n"), 0o600))

	t.Setenv("MULTICAL_STORAGE_DRIVER", "postgres")
	t.Setenv("MULTICAL_STORAGE_ONLOADERROR", "default")
	t.Setenv("MULTICAL_LISTEN", ":7070")

	app, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", app.Storage.Driver)
	assert.Equal(t, "default", app.Storage.OnLoadError)
	assert.Equal(t, ":7070", app.Listen)
}

func TestLoad_InvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
