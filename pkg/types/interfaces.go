package types

import (
	"io/fs"
)

// FS is the filesystem interface required for runitsv operations.
// It mirrors the os package calls the records need, so tests can swap
// in an in-memory implementation with error injection.
type FS interface {
	// File operations
	Open(name string) (fs.File, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Lstat never follows symlinks; every kind check in the records
	// goes through it so a link is always seen as a link.
	Lstat(name string) (fs.FileInfo, error)

	// CreateTemp creates a new temporary file in dir and returns its
	// path. The records write replacement content through it so the
	// final Rename stays on one filesystem.
	CreateTemp(dir, pattern string) (TempFile, error)
}

// TempFile is the subset of *os.File the atomic-write path needs.
type TempFile interface {
	Name() string
	Write(p []byte) (int, error)
	Close() error
}

// Record is the capability shared by every reconciled entry: detect
// whether the path must change, then commit that change. DetectChange
// runs exactly once per record per run; Commit is a no-op unless
// DetectChange decided a mutation is required.
type Record interface {
	// Path returns the absolute filesystem path this record manages.
	Path() string

	// DetectChange inspects current filesystem state and decides
	// whether Commit would mutate anything. It must not mutate the
	// filesystem. Drift conflicts (wrong kind of thing at the path)
	// are returned as errors here, before any commit runs.
	DetectChange(fsys FS) error

	// MustChange reports the decision made by DetectChange.
	MustChange() bool

	// Commit applies the mutation decided by DetectChange. It is a
	// no-op when MustChange is false.
	Commit(fsys FS) error

	// Changed reports whether Commit actually performed a mutation.
	Changed() bool
}
