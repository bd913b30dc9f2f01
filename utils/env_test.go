package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DDLCOMPARE_TEST_FROM_FILE=yes\nDDLCOMPARE_TEST_PRESET=file\n"), 0644))
	chdir(t, dir)
	t.Setenv("DDLCOMPARE_TEST_PRESET", "env")
	t.Setenv("DDLCOMPARE_TEST_FROM_FILE", "")
	os.Unsetenv("DDLCOMPARE_TEST_FROM_FILE")

	LoadEnv()

	assert.Equal(t, "yes", os.Getenv("DDLCOMPARE_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("DDLCOMPARE_TEST_PRESET"))
}

func TestLoadEnvMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	assert.NotPanics(t, LoadEnv)
}
