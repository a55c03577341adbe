// pkg/manifest/collector_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Test route/island directory collection, ordering and conflict
// detection

package manifest_test

import (
	"io/fs"
	"testing"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/filesystem"
	"github.com/atollweb/atoll/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSortedAndRelative(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/index.ts", nil, 0644))
	require.NoError(t, mfs.WriteFile("/project/routes/blog/post.tsx", nil, 0644))
	require.NoError(t, mfs.WriteFile("/project/routes/about.tsx", nil, 0644))

	files, err := manifest.Collect(mfs, "/project/routes")
	require.NoError(t, err)

	assert.Equal(t, []string{"about.tsx", "blog/post.tsx", "index.ts"}, files)
}

func TestCollectIgnoresUnknownExtensions(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/index.ts", nil, 0644))
	require.NoError(t, mfs.WriteFile("/project/routes/style.css", nil, 0644))
	require.NoError(t, mfs.WriteFile("/project/routes/README.md", nil, 0644))

	files, err := manifest.Collect(mfs, "/project/routes")
	require.NoError(t, err)

	assert.Equal(t, []string{"index.ts"}, files)
}

func TestCollectMissingDirectory(t *testing.T) {
	mfs := filesystem.NewMemory()

	files, err := manifest.Collect(mfs, "/project/islands")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCollectNonDirectory(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes", []byte("not a dir"), 0644))

	files, err := manifest.Collect(mfs, "/project/routes")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCollectConflict(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/foo.ts", nil, 0644))
	require.NoError(t, mfs.WriteFile("/project/routes/foo.tsx", nil, 0644))

	_, err := manifest.Collect(mfs, "/project/routes")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRouteConflict))

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "/project/routes", details["dir"])
	assert.Equal(t, "foo", details["key"])
}

func TestCollectNestedConflict(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/blog/post.js", nil, 0644))
	require.NoError(t, mfs.WriteFile("/project/routes/blog/post.jsx", nil, 0644))

	_, err := manifest.Collect(mfs, "/project/routes")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRouteConflict))
	assert.Equal(t, "blog/post", errors.GetErrorDetails(err)["key"])
}

func TestCollectStatErrorPropagates(t *testing.T) {
	mfs := filesystem.NewMemory().WithError("/project/routes", fs.ErrPermission)

	_, err := manifest.Collect(mfs, "/project/routes")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}
