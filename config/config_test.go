package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
detect_drops: true
rollback: false
output: out/migration.sql
skip_tables:
  - tmp_.*
`), 0644))
	t.Setenv(EnvPreserveOrder, "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DetectDrops:         true,
		PreserveColumnOrder: true,
		Rollback:            false,
		Output:              "out/migration.sql",
		SkipTables:          []string{"tmp_.*"},
	}, cfg)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detect_drop: true\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Rollback)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{
		EnvDetectDrops:   "true",
		EnvPreserveOrder: " ",
		EnvOutput:        "x.sql",
	})))
	assert.True(t, cfg.DetectDrops)
	assert.False(t, cfg.PreserveColumnOrder)
	assert.Equal(t, "x.sql", cfg.Output)

	err := cfg.ApplyEnv(env(map[string]string{EnvDetectDrops: "sometimes"}))
	assert.ErrorContains(t, err, EnvDetectDrops)
}

func TestTableFilter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		keep    []string
		dropped []string
	}{
		{"no filters", Config{}, []string{"users", "tmp_x"}, nil},
		{"skip", Config{SkipTables: []string{"tmp_.*", "logs"}}, []string{"users", "logs_archive"}, []string{"tmp_x", "logs"}},
		{"target", Config{TargetTables: []string{"users|posts"}}, []string{"users", "posts"}, []string{"users_old", "comments"}},
		{"target and skip", Config{TargetTables: []string{"app_.*"}, SkipTables: []string{"app_tmp"}}, []string{"app_users"}, []string{"app_tmp", "users"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep, err := tt.cfg.TableFilter()
			require.NoError(t, err)
			for _, name := range tt.keep {
				assert.True(t, keep(name), name)
			}
			for _, name := range tt.dropped {
				assert.False(t, keep(name), name)
			}
		})
	}
}

func TestTableFilterInvalid(t *testing.T) {
	_, err := (&Config{SkipTables: []string{"("}}).TableFilter()
	assert.ErrorContains(t, err, "skip_tables")
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, WriteExample(path))

	t.Setenv(EnvDetectDrops, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.ErrorIs(t, WriteExample(path), fs.ErrExist)
}
