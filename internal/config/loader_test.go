package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte(content), 0644))
	return root
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	root := writeConfig(t, `
name: myserver
transport: sse
port: 9090
duplicatePolicy: error
strictSchemas: true
debounceMs: 500
`)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "myserver", cfg.Name)
	assert.Equal(t, TransportSSE, cfg.Transport)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "error", cfg.DuplicatePolicy)
	assert.True(t, cfg.StrictSchemas)
	assert.Equal(t, 500, cfg.DebounceMs)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	root := writeConfig(t, "name: [unclosed\n")

	_, err := Load(root)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.NotEmpty(t, cfgErr.Suggestions)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"unknown transport", "transport: websocket\n", "transport"},
		{"port out of range", "port: 70000\n", "port"},
		{"negative debounce", "debounceMs: -1\n", "debounceMs"},
		{"unknown policy", "duplicatePolicy: overwrite\n", "duplicatePolicy"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
			assert.Contains(t, cfgErr.DetailedError(), "Suggestions:")
		})
	}
}

func TestValidTransport(t *testing.T) {
	assert.True(t, ValidTransport(TransportStdio))
	assert.True(t, ValidTransport(TransportSSE))
	assert.True(t, ValidTransport(TransportStreamableHTTP))
	assert.False(t, ValidTransport("websocket"))
	assert.False(t, ValidTransport(""))
}
