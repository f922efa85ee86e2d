package records

import (
	stderrors "errors"
	"io/fs"

	"github.com/weykent/runitsv/pkg/errors"
	"github.com/weykent/runitsv/pkg/logging"
	"github.com/weykent/runitsv/pkg/types"
)

// RemoveKind is the kind of filesystem entry a RemoveRecord expects to
// find and delete.
type RemoveKind int

const (
	// KindFile expects a regular file, removed with a single unlink.
	KindFile RemoveKind = iota

	// KindDirectory expects a directory, removed recursively.
	KindDirectory
)

func (k RemoveKind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// RemoveRecord reconciles the absence of a filesystem entry of a
// specific expected kind. Finding an entry of the wrong kind is drift,
// reported as a conflict rather than removed.
type RemoveRecord struct {
	path string
	kind RemoveKind

	mustChange bool
	changed    bool
}

// RemoveFile declares that no regular file may exist at path.
func RemoveFile(path string) *RemoveRecord {
	return &RemoveRecord{path: path, kind: KindFile}
}

// RemoveTree declares that no directory may exist at path; a present
// directory is deleted recursively.
func RemoveTree(path string) *RemoveRecord {
	return &RemoveRecord{path: path, kind: KindDirectory}
}

func (r *RemoveRecord) Path() string     { return r.path }
func (r *RemoveRecord) Kind() RemoveKind { return r.kind }
func (r *RemoveRecord) MustChange() bool { return r.mustChange }
func (r *RemoveRecord) Changed() bool    { return r.changed }

// DetectChange checks what occupies the path. Nothing there means no
// change; the wrong kind of thing is a conflict.
func (r *RemoveRecord) DetectChange(fsys types.FS) error {
	info, err := fsys.Lstat(r.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			r.mustChange = false
			return nil
		}
		return errors.Wrapf(err, errors.ErrFS, "stat %s", r.path)
	}

	matches := false
	switch r.kind {
	case KindFile:
		matches = info.Mode().IsRegular()
	case KindDirectory:
		matches = info.IsDir()
	}
	if !matches {
		return errors.Newf(errors.ErrWrongKind, "%s is not a %s", r.path, r.kind).
			WithDetail("mode", info.Mode().String())
	}

	r.mustChange = true
	logger := logging.GetLogger("records.remove")
	logger.Debug().
		Str("path", r.path).
		Stringer("kind", r.kind).
		Msg("Entry present, will remove")
	return nil
}

// Commit invokes the kind-appropriate remover.
func (r *RemoveRecord) Commit(fsys types.FS) error {
	if !r.mustChange {
		return nil
	}

	var err error
	switch r.kind {
	case KindFile:
		err = fsys.Remove(r.path)
	case KindDirectory:
		err = fsys.RemoveAll(r.path)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrFS, "removing %s", r.path)
	}

	r.changed = true
	return nil
}
