// Package bundler drives the external bundler that turns the collected
// entrypoints into servable assets, and persists the dependency graph it
// reports.
package bundler

import (
	"context"

	"github.com/atollweb/atoll/pkg/types"
)

// Options configures one bundler invocation.
type Options struct {
	// BuildID tags the produced assets; the served app uses it for cache
	// busting.
	BuildID string

	// Entrypoints maps logical bundle names to source URLs.
	Entrypoints types.EntrypointMap

	// ConfigPath is the project config file forwarded to bundler
	// plugins, empty when the project has none.
	ConfigPath string

	// Dev enables development output: inline sourcemaps, no minification.
	Dev bool

	// JSX carries the project's JSX transform settings.
	JSX types.JSXConfig

	// OutDir receives the built assets.
	OutDir string
}

// Bundler produces assets for the given entrypoints and reports which
// modules each bundle transitively depends on.
type Bundler interface {
	Bundle(ctx context.Context, opts Options) (types.DependencySnapshot, error)
}
