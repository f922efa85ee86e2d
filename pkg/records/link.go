package records

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/weykent/runitsv/pkg/errors"
	"github.com/weykent/runitsv/pkg/logging"
	"github.com/weykent/runitsv/pkg/types"
)

// LinkRecord reconciles a symbolic link's target. An empty target
// means the link must not exist. When dirOk is set, a real directory
// occupying the path is tolerated as already satisfied; anything else
// that is not a symlink is a path conflict.
type LinkRecord struct {
	path   string
	target string
	dirOk  bool

	mustChange bool
	changed    bool
}

// NewLink creates a link record. An empty target declares the link
// absent.
func NewLink(path, target string, dirOk bool) *LinkRecord {
	return &LinkRecord{path: path, target: target, dirOk: dirOk}
}

func (r *LinkRecord) Path() string     { return r.path }
func (r *LinkRecord) MustChange() bool { return r.mustChange }
func (r *LinkRecord) Changed() bool    { return r.changed }

// DetectChange reads the current link target, if any. A non-symlink
// occupying the path is a conflict raised here, before any commit.
func (r *LinkRecord) DetectChange(fsys types.FS) error {
	logger := logging.GetLogger("records.link")

	info, err := fsys.Lstat(r.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			r.mustChange = r.target != ""
			return nil
		}
		return errors.Wrapf(err, errors.ErrFS, "stat %s", r.path)
	}

	if info.Mode()&fs.ModeSymlink == 0 {
		if r.dirOk && info.IsDir() {
			r.mustChange = false
			return nil
		}
		return errors.Newf(errors.ErrPathExists, "path already exists and is not a link: %s", r.path)
	}

	currentTarget, err := fsys.Readlink(r.path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFS, "readlink %s", r.path)
	}
	r.mustChange = r.target != currentTarget

	logger.Debug().
		Str("path", r.path).
		Str("current", currentTarget).
		Str("desired", r.target).
		Bool("must_change", r.mustChange).
		Msg("Detected link state")
	return nil
}

// Commit removes whatever occupies the path and, if a target is
// desired, creates the new link. The unlink-then-symlink window where
// the path does not exist is a known limitation of the primitive.
func (r *LinkRecord) Commit(fsys types.FS) error {
	if !r.mustChange {
		return nil
	}

	if err := fsys.Remove(r.path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, errors.ErrFS, "removing %s", r.path)
	}

	if r.target != "" {
		dir := filepath.Dir(r.path)
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrFS, "creating directory %s", dir)
		}
		if err := fsys.Symlink(r.target, r.path); err != nil {
			return errors.Wrapf(err, errors.ErrFS, "linking %s to %s", r.path, r.target)
		}
	}

	r.changed = true
	logger := logging.GetLogger("records.link")
	logger.Debug().
		Str("path", r.path).
		Str("target", r.target).
		Msg("Committed link state")
	return nil
}
