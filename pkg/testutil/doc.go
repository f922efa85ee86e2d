// Package testutil provides test support: a symlink-aware in-memory
// implementation of types.FS with per-path error injection, and
// filesystem assertion helpers for integration tests running against
// real temp directories.
package testutil
