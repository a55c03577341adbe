package manifest

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/types"
)

// EnvCacheKey is the environment variable holding the previous cycle's
// manifest in serialized form. It lets a freshly exec'd dev process skip
// regeneration when nothing changed since the parent process wrote the
// manifest.
const EnvCacheKey = "ATOLL_MANIFEST"

// Cache remembers the previous dev cycle's manifest within a long-lived
// process. The zero value is ready to use and reports no previous
// manifest, which a changed-check treats as empty lists.
type Cache struct {
	mu       sync.Mutex
	previous types.Manifest
	loaded   bool
}

// NewCache returns an empty manifest cache.
func NewCache() *Cache {
	return &Cache{}
}

// Previous returns the manifest recorded by the last Update call, or an
// empty manifest if none was recorded yet.
func (c *Cache) Previous() types.Manifest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previous
}

// Update records cur as the previous manifest for the next cycle.
func (c *Cache) Update(cur types.Manifest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.previous = cur
	c.loaded = true
}

// RestoreFromEnv seeds the cache from the serialized manifest in the
// process environment, if present. A malformed value is discarded: the
// worst case is one redundant regeneration.
func (c *Cache) RestoreFromEnv() {
	raw := os.Getenv(EnvCacheKey)
	if raw == "" {
		return
	}

	var m types.Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		logger := logging.GetLogger("manifest.cache")
		logger.Warn().
			Err(err).
			Msg("Discarding malformed manifest cache from environment")
		return
	}

	c.Update(m)
}

// SnapshotToEnv serializes the cached manifest into the process
// environment so child processes can pick it up.
func (c *Cache) SnapshotToEnv() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return nil
	}

	raw, err := json.Marshal(c.previous)
	if err != nil {
		return err
	}
	return os.Setenv(EnvCacheKey, string(raw))
}
