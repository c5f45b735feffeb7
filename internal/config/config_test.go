package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qedit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "text", cfg.Editor.DefaultLayer)
	assert.Equal(t, "lemma", cfg.Editor.DefaultIndex)
	assert.Equal(t, "AND", cfg.Editor.DefaultConnector)
	assert.Equal(t, "s", cfg.Editor.DefaultScope)
	assert.Equal(t, []string{".fcsql", ".cql"}, cfg.Check.Extensions)
	assert.Equal(t, runtime.NumCPU(), cfg.Check.Workers)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
logging:
  level: debug
  format: json
editor:
  default_layer: lemma
  default_connector: OR
check:
  extensions: [".q"]
  workers: 2
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "lemma", cfg.Editor.DefaultLayer)
	assert.Equal(t, "OR", cfg.Editor.DefaultConnector)
	assert.Equal(t, "s", cfg.Editor.DefaultScope)
	assert.Equal(t, []string{".q"}, cfg.Check.Extensions)
	assert.Equal(t, 2, cfg.Check.Workers)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("QEDIT_EDITOR_DEFAULT_SCOPE", "p")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "p", cfg.Editor.DefaultScope)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"bad level", "logging:\n  level: loud\n", ErrInvalidLevel},
		{"bad format", "logging:\n  format: xml\n", ErrInvalidFormat},
		{"bad connector", "editor:\n  default_connector: XOR\n", ErrInvalidConnector},
		{"bad workers", "check:\n  workers: 0\n", ErrInvalidWorkers},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
