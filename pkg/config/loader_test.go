package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	content := `
foo = "bar"

[main]
packs = ["configwatcher"]

[main.paths]
root = "/srv/app"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tree, err := LoadFile(path)
	require.NoError(t, err)

	s := New(tree)
	assert.Equal(t, "bar", s.Get("foo"))
	assert.Equal(t, "/srv/app", s.Get("main.paths.root"))
	assert.Equal(t, []string{"configwatcher"}, s.GetStringSlice("main.packs"))
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	content := `
foo: bar
main:
  paths:
    root: /srv/app
  packs:
    - configwatcher
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tree, err := LoadFile(path)
	require.NoError(t, err)

	s := New(tree)
	assert.Equal(t, "bar", s.Get("foo"))
	assert.Equal(t, "/srv/app", s.Get("main.paths.root"))
	assert.Equal(t, []string{"configwatcher"}, s.GetStringSlice("main.packs"))
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "app.ini"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("foo = "), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.toml", FormatTOML},
		{"a.TOML", FormatTOML},
		{"a.yaml", FormatYAML},
		{"a.yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
