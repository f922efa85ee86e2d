// Package filesystem provides the OS-backed implementation of the
// types.FS interface. Tests use the symlink-aware in-memory
// implementation in pkg/testutil instead.
package filesystem
