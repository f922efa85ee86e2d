package reconciler

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/weykent/runitsv/pkg/errors"
	"github.com/weykent/runitsv/pkg/logging"
	"github.com/weykent/runitsv/pkg/records"
	"github.com/weykent/runitsv/pkg/types"
)

// Plan is an ordered sequence of records plus the directories whose
// undeclared children must be purged. The service layer builds it; the
// Reconciler owns it for the duration of one run.
type Plan struct {
	// Records in construction order, which is also commit order.
	Records []types.Record

	// CleanupDirs are exclusively-managed directories: any immediate
	// child not claimed by a record is removed.
	CleanupDirs []string
}

// Reconciler executes plans against a filesystem. dryRun withholds all
// commits while keeping the detection pass identical.
type Reconciler struct {
	fsys   types.FS
	dryRun bool
}

// New creates a reconciler over the given filesystem.
func New(fsys types.FS, dryRun bool) *Reconciler {
	return &Reconciler{fsys: fsys, dryRun: dryRun}
}

// Run validates the plan, extends it with cleanup removals, detects
// drift on every record, and commits in construction order unless the
// run is a dry run. The returned report maps every managed path to its
// must-change flag; it is computed during detection, before any commit.
func (r *Reconciler) Run(plan *Plan) (*types.Report, error) {
	logger := logging.GetLogger("reconciler").With().
		Int("record_count", len(plan.Records)).
		Bool("dry_run", r.dryRun).
		Logger()

	claimed, err := claimedPaths(plan)
	if err != nil {
		return nil, err
	}

	all, err := r.withCleanup(plan, claimed)
	if err != nil {
		return nil, err
	}

	report := &types.Report{Paths: make(map[string]bool, len(all))}
	for _, rec := range all {
		if err := rec.DetectChange(r.fsys); err != nil {
			logger.Error().Err(err).Str("path", rec.Path()).Msg("Detection failed")
			return nil, err
		}
		report.Paths[rec.Path()] = rec.MustChange()
		if rec.MustChange() {
			report.Changed = true
		}
	}

	if !report.Changed {
		logger.Debug().Msg("No changes needed")
		return report, nil
	}
	if r.dryRun {
		report.WouldChange = true
		logger.Info().Msg("Dry run, changes pending but withheld")
		return report, nil
	}

	for _, rec := range all {
		if err := rec.Commit(r.fsys); err != nil {
			logger.Error().Err(err).Str("path", rec.Path()).Msg("Commit failed")
			return nil, err
		}
	}

	logger.Info().Int("paths", len(report.Paths)).Msg("Reconciliation committed")
	return report, nil
}

// claimedPaths builds the set of declared paths and rejects duplicate
// declarations. This runs before any filesystem access: silently
// processing duplicates would produce nondeterministic final state.
func claimedPaths(plan *Plan) (map[string]bool, error) {
	claimed := make(map[string]bool, len(plan.Records))
	for _, rec := range plan.Records {
		path := filepath.Clean(rec.Path())
		if claimed[path] {
			return nil, errors.Newf(errors.ErrDuplicatePath, "duplicate file paths specified: %s", path)
		}
		claimed[path] = true
	}
	return claimed, nil
}

// withCleanup appends a remove record for every child of a managed
// directory not claimed by a declared record. The claimed set is the
// single source of truth: a declared record (a supervise link, say)
// keeps cleanup away from its path. The managed directories themselves
// are claimed too, so a nested managed directory is never treated as a
// stray child of its parent.
func (r *Reconciler) withCleanup(plan *Plan, claimed map[string]bool) ([]types.Record, error) {
	all := make([]types.Record, len(plan.Records))
	copy(all, plan.Records)

	for _, dir := range plan.CleanupDirs {
		claimed[filepath.Clean(dir)] = true
	}

	for _, dir := range plan.CleanupDirs {
		entries, err := r.fsys.ReadDir(dir)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFS, "listing %s", dir)
		}
		logger := logging.GetLogger("reconciler")
		for _, entry := range entries {
			child := filepath.Join(dir, entry.Name())
			if claimed[child] {
				continue
			}
			logger.Debug().
				Str("path", child).
				Msg("Stray entry subject to cleanup")
			all = append(all, records.RemoveFile(child))
		}
	}
	return all, nil
}
