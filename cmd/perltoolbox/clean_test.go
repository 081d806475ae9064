package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perltoolbox/internal/cache"
)

func TestCleanCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dc, err := cache.Open()
	require.NoError(t, err)
	require.NoError(t, dc.Store(cache.Sum("x"), "lint", nil))

	run := func(args ...string) string {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append(args, "--env-file", ""))
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		closeApp()
	})

	assert.Contains(t, run("clean", "--dry-run"), "would remove 1 cached results")
	_, err = os.Stat(filepath.Join(dc.Dir(), "results"))
	require.NoError(t, err)

	assert.Contains(t, run("clean", "--dry-run=false"), "removed 1 cached results")
	_, err = os.Stat(dc.Dir())
	assert.True(t, os.IsNotExist(err))
}
