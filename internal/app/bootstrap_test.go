package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom/internal/component"
	"loom/internal/config"
)

func writeComponent(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestBootstrap(t *testing.T) {
	root := t.TempDir()
	writeComponent(t, root, "capabilities/echo.yaml", `
name: echo
description: Echo a message.
args:
  - name: message
    type: str
    required: true
handler: echo
`)
	writeComponent(t, root, "templates/summary.yaml", `
name: summary
prompt: Summarize {{ topic }}.
`)

	application, err := Bootstrap(context.Background(), Options{ComponentsRoot: root})
	require.NoError(t, err)
	defer application.Registry.Close()

	assert.Equal(t, 2, application.Registry.Len())
	_, ok := application.Registry.Get(component.CategoryCapability, "echo")
	assert.True(t, ok)
	assert.Nil(t, application.Watcher)
}

func TestBootstrapDevModeCreatesWatcher(t *testing.T) {
	application, err := Bootstrap(context.Background(), Options{
		ComponentsRoot: t.TempDir(),
		Dev:            true,
	})
	require.NoError(t, err)
	defer application.Registry.Close()

	assert.NotNil(t, application.Watcher)
}

func TestBootstrapRejectsBadConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte("transport: carrier-pigeon\n"), 0644))

	_, err := Bootstrap(context.Background(), Options{ComponentsRoot: root})
	assert.Error(t, err)
}

func TestBootstrapRejectsBadPolicy(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte("duplicatePolicy: warn-and-replace\n"), 0644))

	application, err := Bootstrap(context.Background(), Options{ComponentsRoot: root})
	require.NoError(t, err)
	application.Registry.Close()
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	applyOverrides(&cfg, Options{Transport: config.TransportStdio, Port: 9999})

	assert.Equal(t, config.TransportStdio, cfg.Transport)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 9999, cfg.Port)
}
