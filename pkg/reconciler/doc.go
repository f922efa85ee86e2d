// Package reconciler orchestrates a reconciliation run: it validates
// that no two records claim the same path, extends the plan with
// cleanup removals for stray files in exclusively-managed directories,
// then executes the two-phase detect/commit protocol. Check mode and
// real execution share the identical detection pass; check mode simply
// withholds every commit.
package reconciler
