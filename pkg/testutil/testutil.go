// Package testutil provides helpers for building atoll project layouts
// in tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/atollweb/atoll/pkg/filesystem"
	"github.com/atollweb/atoll/pkg/paths"
	"github.com/atollweb/atoll/pkg/types"
)

// CreateSourceTree writes the given files into fsys below root. Map keys
// are slash-separated paths relative to root, values are file contents.
// Parent directories are created as needed.
func CreateSourceTree(t *testing.T, fsys types.FS, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := fsys.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

// ProjectFS builds an in-memory filesystem populated with a project
// layout: route files under root/routes and island files under
// root/islands, each with a trivial module body.
func ProjectFS(t *testing.T, root string, routes, islands []string) *filesystem.MemoryFS {
	t.Helper()

	fsys := filesystem.NewMemory()
	files := make(map[string]string)
	for _, r := range routes {
		files[paths.RoutesDirName+"/"+r] = "export default {}"
	}
	for _, i := range islands {
		files[paths.IslandsDirName+"/"+i] = "export default {}"
	}
	CreateSourceTree(t, fsys, root, files)
	return fsys
}
