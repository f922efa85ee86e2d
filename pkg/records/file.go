package records

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/weykent/runitsv/pkg/errors"
	"github.com/weykent/runitsv/pkg/hashutil"
	"github.com/weykent/runitsv/pkg/logging"
	"github.com/weykent/runitsv/pkg/types"
)

// FileRecord reconciles a regular file's content and permission bits.
// Content replacement is atomic: bytes are written to a temporary
// sibling file which is renamed over the target, so readers never see
// a partial file.
type FileRecord struct {
	path    string
	mode    fs.FileMode
	content types.Content

	mustChange bool
	changed    bool
}

// NewFile creates a file record. mode must already be masked to the
// settable bits (the service layer applies the umask before records
// are built).
func NewFile(path string, mode fs.FileMode, content types.Content) *FileRecord {
	return &FileRecord{path: path, mode: mode, content: content}
}

func (r *FileRecord) Path() string     { return r.path }
func (r *FileRecord) MustChange() bool { return r.mustChange }
func (r *FileRecord) Changed() bool    { return r.changed }

// DetectChange compares the file's current digest and settable mode
// against the desired content.
func (r *FileRecord) DetectChange(fsys types.FS) error {
	logger := logging.GetLogger("records.file")

	currentDigest, currentMode, exists, err := hashutil.HashFile(fsys, r.path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFS, "hashing %s", r.path)
	}

	switch {
	case !exists:
		r.mustChange = r.content.Kind() != types.ContentAbsent
	case r.content.Kind() == types.ContentAbsent:
		r.mustChange = true
	case r.content.Kind() == types.ContentModeOnly:
		r.mustChange = r.mode != types.SettableMode(currentMode)
	default:
		contentMatches := hashutil.HashBytes(r.content.Bytes()) == currentDigest
		r.mustChange = !contentMatches || r.mode != types.SettableMode(currentMode)
	}

	logger.Debug().
		Str("path", r.path).
		Stringer("content", r.content.Kind()).
		Bool("must_change", r.mustChange).
		Msg("Detected file state")
	return nil
}

// Commit applies the decided transition. It is a no-op unless
// DetectChange found drift.
func (r *FileRecord) Commit(fsys types.FS) error {
	if !r.mustChange {
		return nil
	}

	switch r.content.Kind() {
	case types.ContentAbsent:
		if err := fsys.Remove(r.path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, errors.ErrFS, "removing %s", r.path)
		}
	case types.ContentModeOnly:
		info, err := fsys.Lstat(r.path)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return errors.Newf(errors.ErrFileMissing, "expected file missing: %s", r.path)
			}
			return errors.Wrapf(err, errors.ErrFS, "stat %s", r.path)
		}
		// A symlink has no independent mode to set.
		if info.Mode()&fs.ModeSymlink == 0 {
			if err := fsys.Chmod(r.path, r.mode); err != nil {
				return errors.Wrapf(err, errors.ErrFS, "chmod %s", r.path)
			}
		}
	case types.ContentExact:
		if err := r.writeAtomic(fsys); err != nil {
			return err
		}
	}

	r.changed = true
	logger := logging.GetLogger("records.file")
	logger.Debug().
		Str("path", r.path).
		Msg("Committed file state")
	return nil
}

// writeAtomic writes the desired bytes to a temporary file in the
// target's directory, sets its mode, and renames it over the target.
// The temp file lives in the same directory so the rename never
// crosses filesystems.
func (r *FileRecord) writeAtomic(fsys types.FS) error {
	dir := filepath.Dir(r.path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrFS, "creating directory %s", dir)
	}

	tmp, err := fsys.CreateTemp(dir, ".tmp*~")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFS, "creating temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(r.content.Bytes()); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFS, "writing %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFS, "closing %s", tmpName)
	}

	if err := fsys.Chmod(tmpName, r.mode); err != nil {
		_ = fsys.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFS, "chmod %s", tmpName)
	}

	if err := fsys.Rename(tmpName, r.path); err != nil {
		_ = fsys.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFS, "renaming %s to %s", tmpName, r.path)
	}
	return nil
}
