// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "route_conflict_error",
			code:    errors.ErrRouteConflict,
			message: "duplicate route key",
			wantStr: "[ROUTE_CONFLICT] duplicate route key",
		},
		{
			name:    "runtime_version_error",
			code:    errors.ErrRuntimeVersion,
			message: "runtime too old",
			wantStr: "[RUNTIME_VERSION] runtime too old",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	base := stderrors.New("underlying failure")
	err := errors.Wrap(base, errors.ErrBundler, "bundle failed")

	assert.Equal(t, errors.ErrBundler, err.Code)
	assert.Equal(t, "[BUNDLER] bundle failed: underlying failure", err.Error())
	assert.Equal(t, base, stderrors.Unwrap(err))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "ignored"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "ignored %d", 1))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrRouteConflict, "duplicate route key").
		WithDetail("dir", "routes").
		WithDetail("key", "index")

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "routes", details["dir"])
	assert.Equal(t, "index", details["key"])
}

func TestIsErrorCode(t *testing.T) {
	err := errors.Newf(errors.ErrFormatter, "formatter exited with %d", 1)

	assert.True(t, errors.IsErrorCode(err, errors.ErrFormatter))
	assert.False(t, errors.IsErrorCode(err, errors.ErrBundler))
	assert.False(t, errors.IsErrorCode(stderrors.New("plain"), errors.ErrFormatter))
}

func TestIsErrorCodeWrapped(t *testing.T) {
	inner := errors.New(errors.ErrNotFound, "missing manifest")
	outer := errors.Wrap(inner, errors.ErrManifestGenerate, "regeneration failed")

	assert.True(t, errors.IsErrorCode(outer, errors.ErrManifestGenerate))
	assert.Equal(t, errors.ErrManifestGenerate, errors.GetErrorCode(outer))
}

func TestGetErrorCodeUnknown(t *testing.T) {
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
}
