// Package manifest implements atoll's route/island discovery and the
// generation of the manifest module consumed by the framework's server
// and client bundles.
//
// The package is split along the dev cycle's phases: Collect scans a
// directory tree for source modules, Changed compares two collections,
// Cache remembers the previous cycle's result, and Generator renders and
// writes the manifest source module.
package manifest
