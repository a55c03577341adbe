package manifest

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/types"
)

// sourceExtensions is the allow-list of module extensions considered by
// the collector. Anything else in the tree is ignored.
var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
}

// IsSourceFile reports whether name carries one of the extensions the
// collector considers. The watcher uses it to ignore editor noise.
func IsSourceFile(name string) bool {
	return sourceExtensions[path.Ext(filepath.ToSlash(name))]
}

// Collect recursively scans dir for route/island source files and returns
// their paths relative to dir, forward-slash separated and sorted
// lexicographically so the generated manifest is stable across platforms.
//
// A missing dir, or a dir path that is not a directory, yields an empty
// result and no error: a project without an islands/ directory is valid.
// Two files that map to the same extension-stripped key (for example
// foo.ts and foo.tsx) are ambiguous for routing and fail with a
// ROUTE_CONFLICT error naming the directory and the key.
func Collect(fsys types.FS, dir string) ([]string, error) {
	logger := logging.GetLogger("manifest.collect")
	logger.Trace().Str("dir", dir).Msg("Collecting source files")

	info, err := fsys.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("dir", dir).Msg("Directory does not exist, skipping")
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot access directory").
			WithDetail("path", dir)
	}
	if !info.IsDir() {
		logger.Debug().Str("dir", dir).Msg("Path is not a directory, skipping")
		return nil, nil
	}

	seen := make(map[string]string)
	var files []string

	if err := collectInto(fsys, dir, "", seen, &files); err != nil {
		return nil, err
	}

	sort.Strings(files)

	logger.Debug().Str("dir", dir).Int("count", len(files)).Msg("Collected source files")
	return files, nil
}

// collectInto walks one directory level, appending matched files relative
// to the scan root. rel is the slash-separated prefix under the root.
func collectInto(fsys types.FS, root, rel string, seen map[string]string, files *[]string) error {
	entries, err := fsys.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot read directory").
			WithDetail("path", path.Join(root, rel))
	}

	for _, entry := range entries {
		name := entry.Name()
		entryRel := path.Join(rel, name)

		if entry.IsDir() {
			if err := collectInto(fsys, root, entryRel, seen, files); err != nil {
				return err
			}
			continue
		}

		if !sourceExtensions[path.Ext(name)] {
			continue
		}

		key := strings.TrimSuffix(entryRel, path.Ext(entryRel))
		if existing, dup := seen[key]; dup {
			return errors.Newf(errors.ErrRouteConflict, "%q and %q both resolve to %q", existing, entryRel, key).
				WithDetail("dir", root).
				WithDetail("key", key)
		}
		seen[key] = entryRel

		*files = append(*files, entryRel)
	}

	return nil
}
