package records_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weykent/runitsv/pkg/errors"
	"github.com/weykent/runitsv/pkg/filesystem"
	"github.com/weykent/runitsv/pkg/records"
	"github.com/weykent/runitsv/pkg/testutil"
	"github.com/weykent/runitsv/pkg/types"
)

func writeModeFile(t *testing.T, path, content string, mode fs.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chmod(path, mode))
}

func TestFileRecordDetectChange(t *testing.T) {
	tests := []struct {
		name       string
		existing   *string // nil means no file
		content    types.Content
		mustChange bool
	}{
		{
			name:       "no file, none desired",
			existing:   nil,
			content:    types.AbsentContent(),
			mustChange: false,
		},
		{
			name:       "no file, content desired",
			existing:   nil,
			content:    types.ExactContent([]byte("spam")),
			mustChange: true,
		},
		{
			name:       "no file, mode-only desired",
			existing:   nil,
			content:    types.ModeOnlyContent(),
			mustChange: true,
		},
		{
			name:       "file present, none desired",
			existing:   ptr(""),
			content:    types.AbsentContent(),
			mustChange: true,
		},
		{
			name:       "content matches",
			existing:   ptr("spam"),
			content:    types.ExactContent([]byte("spam")),
			mustChange: false,
		},
		{
			name:       "content differs",
			existing:   ptr("spam"),
			content:    types.ExactContent([]byte("eggs")),
			mustChange: true,
		},
		{
			name:       "empty desired over content",
			existing:   ptr("spam"),
			content:    types.ExactContent(nil),
			mustChange: true,
		},
		{
			name:       "mode-only ignores content",
			existing:   ptr("whatever"),
			content:    types.ModeOnlyContent(),
			mustChange: false,
		},
	}

	fsys := filesystem.NewOS()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "f")
			if tt.existing != nil {
				writeModeFile(t, path, *tt.existing, 0o644)
			}

			rec := records.NewFile(path, 0o644, tt.content)
			require.NoError(t, rec.DetectChange(fsys))
			assert.Equal(t, tt.mustChange, rec.MustChange())
		})
	}
}

func TestFileRecordDetectChangeModeMismatch(t *testing.T) {
	tests := []struct {
		setMode    fs.FileMode
		wantMode   fs.FileMode
		mustChange bool
	}{
		{0o644, 0o644, false},
		{0o644, 0o755, true},
		{0o755, 0o755, false},
		{0o755, 0o644, true},
	}

	fsys := filesystem.NewOS()
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "f")
		writeModeFile(t, path, "spam", tt.setMode)

		rec := records.NewFile(path, tt.wantMode, types.ExactContent([]byte("spam")))
		require.NoError(t, rec.DetectChange(fsys))
		assert.Equalf(t, tt.mustChange, rec.MustChange(), "set %o want %o", tt.setMode, tt.wantMode)
	}
}

func TestFileRecordOneByteFlipsDetection(t *testing.T) {
	big := strings.Repeat("a", 1<<20)
	path := filepath.Join(t.TempDir(), "f")
	writeModeFile(t, path, big, 0o644)
	fsys := filesystem.NewOS()

	same := records.NewFile(path, 0o644, types.ExactContent([]byte(big)))
	require.NoError(t, same.DetectChange(fsys))
	assert.False(t, same.MustChange())

	flipped := []byte(big)
	flipped[1<<19] = 'b'
	differs := records.NewFile(path, 0o644, types.ExactContent(flipped))
	require.NoError(t, differs.DetectChange(fsys))
	assert.True(t, differs.MustChange())
}

func TestFileRecordCommitWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d1", "d2", "f")
	fsys := filesystem.NewOS()

	rec := records.NewFile(path, 0o755, types.ExactContent([]byte("spam eggs")))
	require.NoError(t, rec.DetectChange(fsys))
	require.True(t, rec.MustChange())
	require.NoError(t, rec.Commit(fsys))

	assert.True(t, rec.Changed())
	testutil.AssertFileContent(t, path, "spam eggs")
	testutil.AssertFileMode(t, path, 0o755)

	// No temp file debris next to the target.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileRecordCommitReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	writeModeFile(t, path, "old", 0o600)
	fsys := filesystem.NewOS()

	rec := records.NewFile(path, 0o644, types.ExactContent([]byte("new")))
	require.NoError(t, rec.DetectChange(fsys))
	require.NoError(t, rec.Commit(fsys))

	testutil.AssertFileContent(t, path, "new")
	testutil.AssertFileMode(t, path, 0o644)
}

func TestFileRecordCommitRemoves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	writeModeFile(t, path, "spam", 0o644)
	fsys := filesystem.NewOS()

	rec := records.NewFile(path, 0o644, types.AbsentContent())
	require.NoError(t, rec.DetectChange(fsys))
	require.NoError(t, rec.Commit(fsys))

	assert.True(t, rec.Changed())
	testutil.AssertNotExists(t, path)
}

func TestFileRecordCommitRemoveToleratesAlreadyGone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	writeModeFile(t, path, "spam", 0o644)
	fsys := filesystem.NewOS()

	rec := records.NewFile(path, 0o644, types.AbsentContent())
	require.NoError(t, rec.DetectChange(fsys))
	require.NoError(t, os.Remove(path))
	require.NoError(t, rec.Commit(fsys))
	assert.True(t, rec.Changed())
}

func TestFileRecordCommitModeOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	writeModeFile(t, path, "keep me", 0o600)
	fsys := filesystem.NewOS()

	rec := records.NewFile(path, 0o755, types.ModeOnlyContent())
	require.NoError(t, rec.DetectChange(fsys))
	require.True(t, rec.MustChange())
	require.NoError(t, rec.Commit(fsys))

	testutil.AssertFileContent(t, path, "keep me")
	testutil.AssertFileMode(t, path, 0o755)
}

func TestFileRecordCommitModeOnlyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	fsys := filesystem.NewOS()

	rec := records.NewFile(path, 0o644, types.ModeOnlyContent())
	require.NoError(t, rec.DetectChange(fsys))
	require.True(t, rec.MustChange())

	err := rec.Commit(fsys)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileMissing))
	assert.False(t, rec.Changed())
}

func TestFileRecordCommitModeOnlySkipsSymlinkChmod(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	writeModeFile(t, target, "spam", 0o600)
	link := filepath.Join(dir, "l")
	require.NoError(t, os.Symlink(target, link))
	fsys := filesystem.NewOS()

	rec := records.NewFile(link, 0o755, types.ModeOnlyContent())
	require.NoError(t, rec.DetectChange(fsys))
	require.NoError(t, rec.Commit(fsys))

	// The link target's mode is untouched; only existence was ensured.
	testutil.AssertFileMode(t, target, 0o600)
	testutil.AssertSymlink(t, link, target)
}

func TestFileRecordCommitNoopWithoutMustChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	writeModeFile(t, path, "spam", 0o644)
	fsys := filesystem.NewOS()

	rec := records.NewFile(path, 0o644, types.ExactContent([]byte("spam")))
	require.NoError(t, rec.DetectChange(fsys))
	require.False(t, rec.MustChange())
	require.NoError(t, rec.Commit(fsys))

	assert.False(t, rec.Changed())
	testutil.AssertFileContent(t, path, "spam")
}

func TestFileRecordPropagatesHashErrors(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/sv", 0o755))
	fsys.InjectError("/sv/f", fs.ErrPermission)

	rec := records.NewFile("/sv/f", 0o644, types.ExactContent([]byte("spam")))
	err := rec.DetectChange(fsys)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFS))
}

func TestFileRecordPropagatesWriteErrors(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/sv", 0o755))

	rec := records.NewFile("/sv/f", 0o644, types.ExactContent([]byte("spam")))
	require.NoError(t, rec.DetectChange(fsys))
	require.True(t, rec.MustChange())

	fsys.InjectError("/sv/f", fs.ErrPermission)
	err := rec.Commit(fsys)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFS))
	assert.False(t, rec.Changed())

	// The failed write leaves no temp debris behind.
	entries, err := fsys.ReadDir("/sv")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func ptr(s string) *string { return &s }
