package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgschema/pgcanon/internal/config"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	assert.True(t, cfg.GuardsEnabled())
	assert.False(t, cfg.Render.ShowOwners)
	assert.Empty(t, cfg.Render.Schemas)
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestParseFullConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(`
render:
  guards: false
  show_owners: true
  schemas:
    - public
    - app
output:
  color: never
`))
	require.NoError(t, err)

	assert.False(t, cfg.GuardsEnabled())
	assert.True(t, cfg.Render.ShowOwners)
	assert.Equal(t, []string{"public", "app"}, cfg.Render.Schemas)
	assert.Equal(t, "never", cfg.Output.Color)
}

func TestParsePartialConfigKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(`
render:
  schemas: [app]
`))
	require.NoError(t, err)

	assert.True(t, cfg.GuardsEnabled(), "guards default on when omitted")
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, []string{"app"}, cfg.Render.Schemas)
}

func TestParseInvalidColorMode(t *testing.T) {
	t.Parallel()

	_, err := config.Parse([]byte("output:\n  color: rainbow\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid color mode")
}

func TestParseInvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := config.Parse([]byte("render: [unclosed"))
	require.Error(t, err)
}

func TestLoadExplicitPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  color: always\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "always", cfg.Output.Color)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
