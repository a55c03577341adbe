// Package entrypoints assembles the named bundle inputs handed to the
// bundler: the framework's client runtime, one entry per island, and any
// plugin-declared entries.
package entrypoints

import (
	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/types"
)

// Reserved entrypoint keys.
const (
	KeyMain         = "main"
	KeyDeserializer = "deserializer"
	KeySignals      = "signals"
)

// DefaultRuntimeBase is where the framework's client runtime modules are
// resolved from when the project does not override it.
const DefaultRuntimeBase = "https://cdn.atoll.dev/runtime"

// Options selects which built-in entries are included and where the
// runtime modules live.
type Options struct {
	// Dev selects the dev-mode bootstrap (live reload, error overlay)
	// over the production one.
	Dev bool

	// Signals includes the reactive-state runtime entry. This is an
	// explicit capability flag from project config rather than a
	// resolve-and-catch probe.
	Signals bool

	// RuntimeBase overrides DefaultRuntimeBase.
	RuntimeBase string
}

// Collect builds the entrypoint map for one bundler invocation.
//
// Keys are namespaced (main, deserializer, signals, island-<id>,
// plugin-<name>-<entry>) so the four source categories cannot collide
// with each other. A collision within the plugin category (two plugins
// producing the same key) is ambiguous and fatal rather than
// last-write-wins.
func Collect(opts Options, islands []types.Island, plugins []types.Plugin) (types.EntrypointMap, error) {
	logger := logging.GetLogger("entrypoints")

	base := opts.RuntimeBase
	if base == "" {
		base = DefaultRuntimeBase
	}

	entries := types.EntrypointMap{}

	if opts.Dev {
		entries[KeyMain] = base + "/main_dev.ts"
	} else {
		entries[KeyMain] = base + "/main.ts"
	}
	entries[KeyDeserializer] = base + "/deserializer.ts"

	if opts.Signals {
		entries[KeySignals] = base + "/signals.ts"
	}

	for _, island := range islands {
		entries["island-"+island.ID] = island.URL
	}

	for _, plugin := range plugins {
		for name, url := range plugin.Entrypoints() {
			key := "plugin-" + plugin.Name() + "-" + name
			if existing, ok := entries[key]; ok {
				return nil, errors.Newf(errors.ErrEntrypointConflict, "entrypoint %q declared twice", key).
					WithDetail("plugin", plugin.Name()).
					WithDetail("existing", existing).
					WithDetail("conflicting", url)
			}
			entries[key] = url
		}
	}

	logger.Debug().
		Int("count", len(entries)).
		Bool("dev", opts.Dev).
		Bool("signals", opts.Signals).
		Msg("Collected entrypoints")

	return entries, nil
}
