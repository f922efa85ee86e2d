// Package hashutil provides the content-equality primitive used by the
// reconciler: a streamed SHA256 digest of a file plus its current mode
// bits, with absence reported distinctly from failure.
package hashutil

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/weykent/runitsv/pkg/types"
)

// HashFile calculates the SHA256 checksum and raw mode bits of the file
// at path. A missing file returns ok=false with a nil error; any other
// I/O error propagates, since it may be a permissions problem the
// operator needs to see. The returned mode is the raw stat mode; the
// caller masks it to the settable bits.
func HashFile(fsys types.FS, path string) (digest string, mode fs.FileMode, ok bool, err error) {
	file, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", 0, false, nil
		}
		return "", 0, false, err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", 0, false, err
	}

	info, err := file.Stat()
	if err != nil {
		return "", 0, false, err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), info.Mode(), true, nil
}

// HashBytes calculates the SHA256 checksum of in-memory content, in the
// same format HashFile reports, so desired and current content compare
// directly.
func HashBytes(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}
