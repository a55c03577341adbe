package manifest

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/atollweb/atoll/pkg/types"
)

// Islands derives the island descriptors the entrypoint collector and the
// framework's context loader consume from a collected manifest.
//
// The ID is the extension-stripped relative path, lowercased, with path
// separators flattened to underscores. The collector's conflict check
// guarantees these are unique within a project.
func Islands(m types.Manifest, islandsDir string) []types.Island {
	islands := make([]types.Island, 0, len(m.Islands))
	for _, p := range m.Islands {
		key := strings.TrimSuffix(p, path.Ext(p))
		id := strings.ToLower(strings.ReplaceAll(key, "/", "_"))
		islands = append(islands, types.Island{
			ID:  id,
			URL: path.Join(filepath.ToSlash(islandsDir), p),
		})
	}
	return islands
}
