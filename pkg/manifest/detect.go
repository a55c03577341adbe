package manifest

import "github.com/atollweb/atoll/pkg/types"

// Changed reports whether the current manifest differs from the previous
// one. Equality is element-wise and order-sensitive over both lists; the
// collector's deterministic sort guarantees order differences only occur
// when the underlying file set changed.
func Changed(prev, cur types.Manifest) bool {
	return !equalPaths(prev.Routes, cur.Routes) || !equalPaths(prev.Islands, cur.Islands)
}

func equalPaths(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
