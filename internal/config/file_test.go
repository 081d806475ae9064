package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTemplateDecodes(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, Template)

	o, err := LoadFile(path)
	require.NoError(t, err)
	s := o.Apply(Defaults())
	require.NoError(t, s.Validate())
	assert.Equal(t, []string{filepath.Join(dir, "lib")}, s.Syntax.IncludePaths)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[lint]\nexecutable = \"perlcritic\"\n")
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Contains(t, err.Error(), "lint.executable")
}

func TestLoadFileBadTimeout(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "timeout = \"soon\"\n")
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestFindFileWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "[lint]\nseverity = \"stern\"\n")
	nested := filepath.Join(root, "lib", "App")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, ok, err := FindFile(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, found)

	s, used, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "stern", s.Lint.Severity)
}
