// Package types defines the core types shared across atoll's packages.
//
// Keeping these in a leaf package avoids import cycles between the
// collector, generator, bundler and orchestrator packages, all of which
// exchange the same few structures (Manifest, EntrypointMap,
// DependencySnapshot).
package types
