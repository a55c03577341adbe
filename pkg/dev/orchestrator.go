// Package dev sequences atoll's development cycle: scan the project,
// regenerate the manifest when it changed, rebuild assets through the
// bundler and finally hand control to the application runtime.
package dev

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"sync"

	"github.com/atollweb/atoll/pkg/bundler"
	"github.com/atollweb/atoll/pkg/config"
	"github.com/atollweb/atoll/pkg/entrypoints"
	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/filesystem"
	"github.com/atollweb/atoll/pkg/formatter"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/manifest"
	"github.com/atollweb/atoll/pkg/paths"
	"github.com/atollweb/atoll/pkg/plugins"
	"github.com/atollweb/atoll/pkg/types"
)

// Orchestrator wires the dev cycle's collaborators. Fields are exported
// so tests can substitute fakes; New fills in the production set.
type Orchestrator struct {
	FS          types.FS
	Paths       paths.Paths
	Config      *config.Config
	Cache       *manifest.Cache
	Generator   *manifest.Generator
	Bundler     bundler.Bundler
	Runtime     AppRuntime
	Updates     UpdateChecker
	HostVersion VersionProber

	// cycleMu serializes Cycle: the watch loop and the startup cycle
	// share the output directory.
	cycleMu sync.Mutex
}

// New creates an orchestrator with the production collaborators derived
// from the project configuration.
func New(p paths.Paths, cfg *config.Config) *Orchestrator {
	fsys := filesystem.NewOS()

	var f formatter.Formatter = formatter.Noop{}
	if len(cfg.Formatter.Command) > 0 {
		f = formatter.NewCommand(cfg.Formatter.Command[0], cfg.Formatter.Command[1:]...)
	}

	return &Orchestrator{
		FS:          fsys,
		Paths:       p,
		Config:      cfg,
		Cache:       manifest.NewCache(),
		Generator:   manifest.NewGenerator(fsys, f),
		Bundler:     bundler.NewEsbuild(cfg.Bundler.Path),
		Runtime:     &ExecRuntime{Path: cfg.Runtime.Path, Entrypoint: cfg.Runtime.Entrypoint},
		Updates:     NewUpdateChecker(p.StateDir()),
		HostVersion: ProbeCommand(cfg.Runtime.Path),
	}
}

// Run executes one full dev cycle and transfers control to the
// application runtime. It blocks for the lifetime of the application.
func (o *Orchestrator) Run(ctx context.Context) error {
	logger := logging.GetLogger("dev")

	if err := o.checkRuntime(ctx); err != nil {
		return err
	}
	o.fireUpdateCheck(ctx)

	o.Cache.RestoreFromEnv()

	app, err := o.Cycle(ctx, true)
	if err != nil {
		return err
	}

	if err := o.Cache.SnapshotToEnv(); err != nil {
		logger.Warn().Err(err).Msg("Could not persist manifest cache to environment")
	}

	return o.Runtime.Run(ctx, app)
}

// Build executes one production cycle: always regenerate, bundle without
// dev flags, and return without launching the application.
func (o *Orchestrator) Build(ctx context.Context) error {
	logger := logging.GetLogger("dev")

	// Force regeneration regardless of the previous cycle
	o.Cache.Update(types.Manifest{})
	if err := o.FS.Remove(o.Paths.ManifestFile()); err != nil {
		// Missing file is the common case on a clean build
		logger.Trace().Err(err).Msg("No previous manifest to remove")
	}

	_, err := o.Cycle(ctx, false)
	return err
}

// Watch re-runs the dev cycle whenever events delivers a change signal.
// Cycle failures are reported but do not stop watching: the next save
// can fix a route conflict. Watch returns when ctx is done or events is
// closed.
func (o *Orchestrator) Watch(ctx context.Context, events <-chan struct{}) error {
	logger := logging.GetLogger("dev.watch")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := o.Cycle(ctx, true); err != nil {
				logger.Error().Err(err).Msg("Dev cycle failed, waiting for next change")
			}
		}
	}
}

// Cycle performs steps 4-10 of the dev cycle: parallel directory scans,
// change detection, conditional regeneration, asset invalidation,
// bundling and dependency-snapshot persistence. Cycles are serialized:
// a watch event must not race the startup cycle over the output dir.
func (o *Orchestrator) Cycle(ctx context.Context, devMode bool) (App, error) {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()

	logger := logging.GetLogger("dev")
	done := logging.LogOperationStart(logger, "dev-cycle")
	defer done()

	// The two scans read disjoint subtrees, safe to run concurrently.
	var (
		wg                    sync.WaitGroup
		routes, islands       []string
		routesErr, islandsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		routes, routesErr = manifest.Collect(o.FS, o.Paths.RoutesDir())
	}()
	go func() {
		defer wg.Done()
		islands, islandsErr = manifest.Collect(o.FS, o.Paths.IslandsDir())
	}()
	wg.Wait()
	if routesErr != nil {
		return App{}, routesErr
	}
	if islandsErr != nil {
		return App{}, islandsErr
	}

	cur := types.Manifest{Routes: routes, Islands: islands}
	prev := o.Cache.Previous()

	manifestPath := o.Paths.ManifestFile()
	_, statErr := o.FS.Stat(manifestPath)
	if statErr != nil || manifest.Changed(prev, cur) {
		if _, err := o.Generator.Generate(ctx, o.Paths.OutputDir(), o.Paths.Root(), cur); err != nil {
			return App{}, err
		}
	} else {
		logger.Debug().Msg("Manifest unchanged, reusing generated module")
	}
	// The cache must only record manifests that made it to disk: a failed
	// regeneration in watch mode would otherwise make the next cycle skip
	// it and serve the stale module.
	o.Cache.Update(cur)

	// Stale-asset invalidation: clear unconditionally, the bundler
	// repopulates below.
	if err := o.FS.RemoveAll(o.Paths.AssetsDir()); err != nil {
		return App{}, errors.Wrap(err, errors.ErrFileAccess, "cannot clear assets directory").
			WithDetail("path", o.Paths.AssetsDir())
	}
	if err := o.FS.MkdirAll(o.Paths.AssetsDir(), 0755); err != nil {
		return App{}, errors.Wrap(err, errors.ErrDirCreate, "cannot recreate assets directory").
			WithDetail("path", o.Paths.AssetsDir())
	}

	islandDescs := manifest.Islands(cur, filepath.ToSlash(o.Paths.IslandsDir()))

	projectPlugins, err := plugins.Load(o.FS, o.Paths.PluginsDir(), o.Config.PluginList())
	if err != nil {
		return App{}, err
	}

	eps, err := entrypoints.Collect(entrypoints.Options{
		Dev:     devMode,
		Signals: o.Config.Dev.Signals,
	}, islandDescs, projectPlugins)
	if err != nil {
		return App{}, err
	}

	buildID := newBuildID()
	snapshot, err := o.Bundler.Bundle(ctx, bundler.Options{
		BuildID:     buildID,
		Entrypoints: eps,
		ConfigPath:  o.Config.Path,
		Dev:         devMode,
		JSX:         o.Config.Bundler.JSX,
		OutDir:      o.Paths.AssetsDir(),
	})
	if err != nil {
		return App{}, err
	}

	if err := bundler.WriteSnapshot(o.FS, o.Paths.DepsFile(), snapshot); err != nil {
		return App{}, err
	}

	return App{
		ProjectRoot:  o.Paths.Root(),
		ManifestPath: manifestPath,
		DepsPath:     o.Paths.DepsFile(),
		BuildID:      buildID,
		Manifest:     cur,
		Islands:      islandDescs,
	}, nil
}

// checkRuntime gates the cycle on the host runtime version.
func (o *Orchestrator) checkRuntime(ctx context.Context) error {
	current, err := o.HostVersion(ctx)
	if err != nil {
		return err
	}
	return CheckRuntimeVersion(current, o.Config.Runtime.Minimum)
}

// fireUpdateCheck runs the update check in the background. Its failure
// must never abort or delay the dev cycle.
func (o *Orchestrator) fireUpdateCheck(ctx context.Context) {
	if !o.Config.Dev.UpdateCheck || o.Updates == nil {
		return
	}
	go func() {
		if err := o.Updates.Check(ctx); err != nil {
			logger := logging.GetLogger("dev.update")
			logger.Debug().Err(err).Msg("Update check failed")
		}
	}()
}

// newBuildID tags one bundler invocation's output.
func newBuildID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
