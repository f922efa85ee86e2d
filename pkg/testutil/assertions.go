package testutil

import (
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertFileContent checks that a file on the real filesystem exists
// with exactly the given content.
func AssertFileContent(t *testing.T, path, content string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading %s", path)
	assert.Equal(t, content, string(data), "content of %s", path)
}

// AssertFileMode checks a file's settable mode bits.
func AssertFileMode(t *testing.T, path string, mode fs.FileMode) {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err, "stat %s", path)
	assert.Equal(t, mode, info.Mode().Perm()|info.Mode()&(fs.ModeSetuid|fs.ModeSetgid|fs.ModeSticky),
		"mode of %s", path)
}

// AssertSymlink checks that path is a symlink pointing at target.
func AssertSymlink(t *testing.T, path, target string) {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err, "stat %s", path)
	require.NotZero(t, info.Mode()&fs.ModeSymlink, "%s is not a symlink", path)
	dest, err := os.Readlink(path)
	require.NoError(t, err, "readlink %s", path)
	assert.Equal(t, target, dest, "target of %s", path)
}

// AssertNotExists checks that nothing occupies path.
func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "%s should not exist", path)
}

// AssertIsDir checks that path is a directory.
func AssertIsDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err, "stat %s", path)
	assert.True(t, info.IsDir(), "%s should be a directory", path)
}
