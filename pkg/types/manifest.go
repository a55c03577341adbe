package types

// Manifest enumerates the route and island source files discovered in a
// project. Both lists hold forward-slash relative paths, sorted
// lexicographically, and no two entries within a list share the same
// extension-stripped key.
type Manifest struct {
	Routes  []string `json:"routes"`
	Islands []string `json:"islands"`
}

// IsEmpty reports whether the manifest contains no routes and no islands.
func (m Manifest) IsEmpty() bool {
	return len(m.Routes) == 0 && len(m.Islands) == 0
}

// Island describes one client-hydrated component as exposed by the
// generated manifest module.
type Island struct {
	// ID is the stable identifier derived from the island's file name.
	ID string `json:"id"`
	// URL is the resolvable module location of the island's source file.
	URL string `json:"url"`
}

// DependencySnapshot maps a module URL to the ordered list of module URLs
// it transitively depends on, as reported by the bundler. The snapshot is
// persisted verbatim for the served application to consult at runtime.
type DependencySnapshot map[string][]string
