package service

import (
	stderrors "errors"
	"io/fs"

	"github.com/weykent/runitsv/pkg/errors"
	"github.com/weykent/runitsv/pkg/types"
)

// FirstDirectory returns the first candidate that exists as a real
// directory. Symlinks do not count, even when they point at
// directories; candidates that do not exist are skipped. An empty
// string means no candidate qualified. Stat errors other than
// not-exist propagate.
func FirstDirectory(fsys types.FS, candidates []string) (string, error) {
	for _, dir := range candidates {
		info, err := fsys.Lstat(dir)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", errors.Wrapf(err, errors.ErrFS, "stat %s", dir)
		}
		if !info.IsDir() {
			continue
		}
		return dir, nil
	}
	return "", nil
}
