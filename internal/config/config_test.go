package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "COMMANDER_NO_COLOR=1\nCOMMANDER_SHELL=/bin/zsh\nCOMMANDER_TIMEOUT_MS=2500\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	defer os.Unsetenv("COMMANDER_NO_COLOR")
	defer os.Unsetenv("COMMANDER_SHELL")
	defer os.Unsetenv("COMMANDER_TIMEOUT_MS")

	cfg := Load(dir)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "/bin/zsh", cfg.Shell)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
}

func TestLoadToleratesMissingEnvFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Load(dir)
	assert.False(t, cfg.NoColor)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
}
