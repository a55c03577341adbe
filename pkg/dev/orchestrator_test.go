// pkg/dev/orchestrator_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem, fake bundler/runtime/update checker
// PURPOSE: Test dev cycle sequencing: scans, change detection, asset
// invalidation, bundling and application handoff

package dev_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/atollweb/atoll/pkg/bundler"
	"github.com/atollweb/atoll/pkg/config"
	"github.com/atollweb/atoll/pkg/dev"
	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/filesystem"
	"github.com/atollweb/atoll/pkg/formatter"
	"github.com/atollweb/atoll/pkg/manifest"
	"github.com/atollweb/atoll/pkg/paths"
	"github.com/atollweb/atoll/pkg/testutil"
	"github.com/atollweb/atoll/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBundler records invocations and succeeds with a fixed snapshot.
type fakeBundler struct {
	mu    sync.Mutex
	calls []bundler.Options
}

func (b *fakeBundler) Bundle(_ context.Context, opts bundler.Options) (types.DependencySnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, opts)
	return types.DependencySnapshot{"main": {"runtime.ts"}}, nil
}

func (b *fakeBundler) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *fakeBundler) lastCall() bundler.Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

// fakeRuntime records the App it was handed.
type fakeRuntime struct {
	app dev.App
	ran bool
}

func (r *fakeRuntime) Run(_ context.Context, app dev.App) error {
	r.app = app
	r.ran = true
	return nil
}

// countingFormatter counts how often generated source passed through it.
type countingFormatter struct {
	count int
}

func (f *countingFormatter) Format(_ context.Context, src []byte) ([]byte, error) {
	f.count++
	return src, nil
}

// flakyFormatter fails exactly once when armed, then recovers.
type flakyFormatter struct {
	failNext bool
}

func (f *flakyFormatter) Format(_ context.Context, src []byte) ([]byte, error) {
	if f.failNext {
		f.failNext = false
		return nil, errors.New(errors.ErrFormatter, "formatter crashed")
	}
	return src, nil
}

// blockingBundler records like fakeBundler but parks each invocation
// until released.
type blockingBundler struct {
	fakeBundler
	release chan struct{}
}

func (b *blockingBundler) Bundle(ctx context.Context, opts bundler.Options) (types.DependencySnapshot, error) {
	snap, err := b.fakeBundler.Bundle(ctx, opts)
	<-b.release
	return snap, err
}

// failingUpdates always errors; the orchestrator must swallow it.
type failingUpdates struct{}

func (failingUpdates) Check(context.Context) error {
	return errors.New(errors.ErrInternal, "network down")
}

func staticVersion(v string) dev.VersionProber {
	return func(context.Context) (string, error) { return v, nil }
}

func testConfig() *config.Config {
	return &config.Config{
		Runtime: config.RuntimeConfig{Path: "deno", Entrypoint: "main.ts", Minimum: "1.40.0"},
	}
}

func newTestOrchestrator(t *testing.T, mfs *filesystem.MemoryFS, cfg *config.Config) (*dev.Orchestrator, *fakeBundler, *fakeRuntime, *countingFormatter) {
	t.Helper()

	p, err := paths.New("/project")
	require.NoError(t, err)

	fb := &fakeBundler{}
	fr := &fakeRuntime{}
	cf := &countingFormatter{}

	o := &dev.Orchestrator{
		FS:          mfs,
		Paths:       p,
		Config:      cfg,
		Cache:       manifest.NewCache(),
		Generator:   manifest.NewGenerator(mfs, cf),
		Bundler:     fb,
		Runtime:     fr,
		HostVersion: staticVersion("1.44.0"),
	}
	return o, fb, fr, cf
}

func TestRunHappyPath(t *testing.T) {
	t.Setenv(manifest.EnvCacheKey, "")

	mfs := testutil.ProjectFS(t, "/project", []string{"index.ts"}, []string{"Counter.tsx"})

	o, fb, fr, _ := newTestOrchestrator(t, mfs, testConfig())

	require.NoError(t, o.Run(context.Background()))

	// Control was transferred with a complete App
	assert.True(t, fr.ran)
	assert.Equal(t, "/project", fr.app.ProjectRoot)
	assert.NotEmpty(t, fr.app.BuildID)
	assert.Equal(t, []string{"index.ts"}, fr.app.Manifest.Routes)
	require.Len(t, fr.app.Islands, 1)
	assert.Equal(t, "counter", fr.app.Islands[0].ID)

	// Manifest and dependency snapshot were written
	_, err := mfs.Stat("/project/_atoll/manifest.gen.ts")
	assert.NoError(t, err)
	data, err := mfs.ReadFile("/project/_atoll/deps.gen.ts")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"main"`)

	// Bundler saw dev flags and the island entrypoint
	require.Equal(t, 1, fb.callCount())
	opts := fb.lastCall()
	assert.True(t, opts.Dev)
	assert.Contains(t, opts.Entrypoints, "island-counter")
	assert.Contains(t, opts.Entrypoints, "main")
	assert.Contains(t, opts.Entrypoints, "deserializer")
}

func TestRunRuntimeVersionGate(t *testing.T) {
	t.Setenv(manifest.EnvCacheKey, "")

	mfs := filesystem.NewMemory()
	o, fb, fr, _ := newTestOrchestrator(t, mfs, testConfig())
	o.HostVersion = staticVersion("1.2.0")

	err := o.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRuntimeVersion))

	// Nothing else happened
	assert.Equal(t, 0, fb.callCount())
	assert.False(t, fr.ran)
}

func TestCycleSkipsRegenerationWhenUnchanged(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/index.ts", nil, 0644))

	o, fb, _, cf := newTestOrchestrator(t, mfs, testConfig())

	_, err := o.Cycle(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, cf.count)

	_, err = o.Cycle(context.Background(), true)
	require.NoError(t, err)

	// Unchanged manifest: no regeneration, but assets were rebuilt
	assert.Equal(t, 1, cf.count)
	assert.Equal(t, 2, fb.callCount())
}

func TestCycleRegeneratesWhenManifestMissing(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/index.ts", nil, 0644))

	o, _, _, cf := newTestOrchestrator(t, mfs, testConfig())

	_, err := o.Cycle(context.Background(), true)
	require.NoError(t, err)

	require.NoError(t, mfs.Remove("/project/_atoll/manifest.gen.ts"))

	_, err = o.Cycle(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, cf.count)
}

func TestCycleRegeneratesOnChange(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/index.ts", nil, 0644))

	o, _, _, cf := newTestOrchestrator(t, mfs, testConfig())

	_, err := o.Cycle(context.Background(), true)
	require.NoError(t, err)

	require.NoError(t, mfs.WriteFile("/project/routes/about.tsx", nil, 0644))

	app, err := o.Cycle(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, cf.count)
	assert.Equal(t, []string{"about.tsx", "index.ts"}, app.Manifest.Routes)
}

func TestCycleRouteConflictFatal(t *testing.T) {
	mfs := testutil.ProjectFS(t, "/project", []string{"foo.ts", "foo.tsx"}, nil)

	o, fb, _, _ := newTestOrchestrator(t, mfs, testConfig())

	_, err := o.Cycle(context.Background(), true)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRouteConflict))
	assert.Equal(t, 0, fb.callCount())
}

func TestCycleEmptyProject(t *testing.T) {
	mfs := filesystem.NewMemory()

	o, fb, _, _ := newTestOrchestrator(t, mfs, testConfig())

	app, err := o.Cycle(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, app.Manifest.Routes)
	assert.Empty(t, app.Manifest.Islands)
	assert.Equal(t, 1, fb.callCount())

	data, err := mfs.ReadFile("/project/_atoll/manifest.gen.ts")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "import * as $")
}

func TestCyclePluginEntrypoints(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/index.ts", nil, 0644))
	require.NoError(t, mfs.WriteFile("/project/plugins/tailwind.toml",
		[]byte("[entrypoints]\nstyles = \"./plugins/tailwind/styles.ts\"\n"), 0644))

	cfg := testConfig()
	cfg.Plugins = map[string]config.PluginConfig{
		"analytics": {Entrypoints: map[string]string{"tracker": "./analytics.ts"}},
	}

	o, fb, _, _ := newTestOrchestrator(t, mfs, cfg)

	_, err := o.Cycle(context.Background(), true)
	require.NoError(t, err)

	eps := fb.lastCall().Entrypoints
	assert.Contains(t, eps, "plugin-tailwind-styles")
	assert.Contains(t, eps, "plugin-analytics-tracker")
}

func TestRunSwallowsUpdateCheckFailure(t *testing.T) {
	t.Setenv(manifest.EnvCacheKey, "")

	mfs := filesystem.NewMemory()
	cfg := testConfig()
	cfg.Dev.UpdateCheck = true

	o, _, fr, _ := newTestOrchestrator(t, mfs, cfg)
	o.Updates = failingUpdates{}

	require.NoError(t, o.Run(context.Background()))
	assert.True(t, fr.ran)
}

func TestRunSignalsCapability(t *testing.T) {
	t.Setenv(manifest.EnvCacheKey, "")

	mfs := filesystem.NewMemory()
	cfg := testConfig()
	cfg.Dev.Signals = true

	o, fb, _, _ := newTestOrchestrator(t, mfs, cfg)

	require.NoError(t, o.Run(context.Background()))
	assert.Contains(t, fb.lastCall().Entrypoints, "signals")
}

func TestBuildUsesProductionFlags(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/index.ts", nil, 0644))

	o, fb, fr, cf := newTestOrchestrator(t, mfs, testConfig())

	require.NoError(t, o.Build(context.Background()))

	require.Equal(t, 1, fb.callCount())
	assert.False(t, fb.lastCall().Dev)
	assert.Equal(t, 1, cf.count)
	assert.False(t, fr.ran)
}

func TestCycleFailedGenerateDoesNotPoisonCache(t *testing.T) {
	mfs := testutil.ProjectFS(t, "/project", []string{"index.ts"}, nil)

	o, _, _, _ := newTestOrchestrator(t, mfs, testConfig())
	flaky := &flakyFormatter{}
	o.Generator = manifest.NewGenerator(mfs, flaky)

	_, err := o.Cycle(context.Background(), true)
	require.NoError(t, err)

	// A new route appears, but regeneration fails transiently
	require.NoError(t, mfs.WriteFile("/project/routes/about.ts", nil, 0644))
	flaky.failNext = true
	_, err = o.Cycle(context.Background(), true)
	require.Error(t, err)

	// The next cycle must regenerate rather than serve the stale module
	_, err = o.Cycle(context.Background(), true)
	require.NoError(t, err)

	data, err := mfs.ReadFile("/project/_atoll/manifest.gen.ts")
	require.NoError(t, err)
	assert.Contains(t, string(data), "about.ts")
}

func TestCyclesAreSerialized(t *testing.T) {
	mfs := testutil.ProjectFS(t, "/project", []string{"index.ts"}, nil)

	o, _, _, _ := newTestOrchestrator(t, mfs, testConfig())
	bb := &blockingBundler{release: make(chan struct{})}
	o.Bundler = bb

	results := make(chan error, 2)
	go func() {
		_, err := o.Cycle(context.Background(), true)
		results <- err
	}()
	require.Eventually(t, func() bool { return bb.callCount() == 1 }, time.Second, 5*time.Millisecond)

	go func() {
		_, err := o.Cycle(context.Background(), true)
		results <- err
	}()

	// The second cycle must wait for the first, not run alongside it
	assert.Never(t, func() bool { return bb.callCount() > 1 }, 100*time.Millisecond, 10*time.Millisecond)

	bb.release <- struct{}{}
	bb.release <- struct{}{}
	require.NoError(t, <-results)
	require.NoError(t, <-results)
	assert.Equal(t, 2, bb.callCount())
}

func TestWatchRerunsCycle(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/index.ts", nil, 0644))

	o, fb, _, _ := newTestOrchestrator(t, mfs, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan struct{}, 2)
	done := make(chan error, 1)
	go func() { done <- o.Watch(ctx, events) }()

	events <- struct{}{}
	events <- struct{}{}

	require.Eventually(t, func() bool { return fb.callCount() == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchSurvivesCycleFailure(t *testing.T) {
	mfs := filesystem.NewMemory()
	require.NoError(t, mfs.WriteFile("/project/routes/foo.ts", nil, 0644))
	require.NoError(t, mfs.WriteFile("/project/routes/foo.tsx", nil, 0644))

	o, fb, _, _ := newTestOrchestrator(t, mfs, testConfig())

	events := make(chan struct{}, 2)
	events <- struct{}{} // conflicting cycle
	close(events)

	require.NoError(t, o.Watch(context.Background(), events))
	assert.Equal(t, 0, fb.callCount())
}

func TestCheckRuntimeVersion(t *testing.T) {
	tests := []struct {
		name    string
		current string
		minimum string
		wantErr bool
	}{
		{name: "equal", current: "1.40.0", minimum: "1.40.0", wantErr: false},
		{name: "newer", current: "2.0.0", minimum: "1.40.0", wantErr: false},
		{name: "patch_older", current: "1.39.9", minimum: "1.40.0", wantErr: true},
		{name: "v_prefix", current: "v1.41.0", minimum: "1.40.0", wantErr: false},
		{name: "short_minimum", current: "1.40.1", minimum: "1.40", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dev.CheckRuntimeVersion(tt.current, tt.minimum)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrRuntimeVersion))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

var _ formatter.Formatter = (*countingFormatter)(nil)
