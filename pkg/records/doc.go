// Package records implements the three record variants the reconciler
// plans with: FileRecord (regular file content and mode), LinkRecord
// (symlink target), and RemoveRecord (enforced absence of a file or
// directory tree). Each implements types.Record: a side-effect-free
// DetectChange pass followed by an idempotent Commit.
//
// Commits are individually crash-safe: file content lands via a
// temporary sibling file renamed over the target, and deletes tolerate
// "already gone". There is no rollback across records; the reconciler
// halts on the first commit error with prior commits applied.
package records
