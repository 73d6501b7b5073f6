package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"b/Route.java",
		"a/routes.YAML",
		"a/notes.txt",
		".git/hooks.java",
		"c/deep/x.groovy",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	files, err := FindFilesByExtension(root, ".java", ".yaml", ".groovy")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a/routes.YAML"),
		filepath.Join(root, "b/Route.java"),
		filepath.Join(root, "c/deep/x.groovy"),
	}, files)

	single := filepath.Join(root, "a/notes.txt")
	files, err = FindFilesByExtension(single, ".java")
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files)

	_, err = FindFilesByExtension(filepath.Join(root, "missing"), ".java")
	assert.Error(t, err)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(root) })
}
