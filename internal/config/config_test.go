package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hornqual.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: mathsat\ndepth: 5\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMathSAT, cfg.Backend)
	assert.Equal(t, 5, cfg.Depth)
	assert.Equal(t, Default().SolverPath, cfg.SolverPath, "unset fields keep the built-in default")
}

func TestOverlayPrecedence(t *testing.T) {
	cfg := Default()
	overridden := cfg.Overlay(BackendCVC4, "", -1, "", "debug")
	assert.Equal(t, BackendCVC4, overridden.Backend)
	assert.Equal(t, cfg.Depth, overridden.Depth, "negative depth means unset, default is kept")
	assert.Equal(t, "debug", overridden.LogLevel)
}
