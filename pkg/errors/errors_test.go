package errors_test

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weykent/runitsv/pkg/errors"
)

func TestErrorFormatting(t *testing.T) {
	err := errors.New(errors.ErrConfigInvalid, "name is required")
	assert.Equal(t, "[CONFIG_INVALID] name is required", err.Error())

	wrapped := errors.Wrap(fmt.Errorf("disk full"), errors.ErrFS, "writing run")
	assert.Equal(t, "[FS_ERROR] writing run: disk full", wrapped.Error())
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrWrongKind, "unexpected kind at %s", "/sv/app/env")
	assert.Equal(t, errors.ErrWrongKind, err.Code)
	assert.Contains(t, err.Message, "/sv/app/env")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrFS, "nothing"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrFS, "nothing %d", 1))
}

func TestUnwrapPreservesSentinel(t *testing.T) {
	inner := fs.ErrNotExist
	err := errors.Wrap(inner, errors.ErrFS, "lstat failed")
	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
}

func TestIsMatchesByCode(t *testing.T) {
	a := errors.New(errors.ErrDuplicatePath, "one")
	b := errors.New(errors.ErrDuplicatePath, "another")
	c := errors.New(errors.ErrPathExists, "different code")

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestIsErrorCode(t *testing.T) {
	err := errors.New(errors.ErrNoDirectory, "no sv directory")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoDirectory))
	assert.False(t, errors.IsErrorCode(err, errors.ErrFS))

	// Codes survive an extra plain-error wrap.
	deep := fmt.Errorf("while planning: %w", err)
	assert.True(t, errors.IsErrorCode(deep, errors.ErrNoDirectory))

	assert.False(t, errors.IsErrorCode(fmt.Errorf("plain"), errors.ErrNoDirectory))
	assert.False(t, errors.IsErrorCode(nil, errors.ErrNoDirectory))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrFileMissing, errors.GetErrorCode(errors.New(errors.ErrFileMissing, "gone")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrWrongKind, "unexpected kind").
		WithDetail("path", "/sv/app/env").
		WithDetail("mode", "drwxr-xr-x")

	assert.Equal(t, "/sv/app/env", err.Details["path"])
	assert.Equal(t, "drwxr-xr-x", err.Details["mode"])
}
