package dev

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/types"
)

// App describes everything the application runtime needs to start
// serving once the dev cycle completes.
type App struct {
	ProjectRoot  string
	ManifestPath string
	DepsPath     string
	BuildID      string
	Manifest     types.Manifest
	Islands      []types.Island
}

// AppRuntime receives control at the end of a dev cycle. Run blocks for
// the lifetime of the application.
type AppRuntime interface {
	Run(ctx context.Context, app App) error
}

// VersionProber reports the host runtime's version string.
type VersionProber func(ctx context.Context) (string, error)

// ProbeCommand returns a VersionProber that asks the runtime executable
// itself, parsing the leading "name x.y.z" line of `<path> --version`.
func ProbeCommand(path string) VersionProber {
	return func(ctx context.Context) (string, error) {
		out, err := exec.CommandContext(ctx, path, "--version").Output()
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrRuntimeVersion, "cannot run %q", path).
				WithDetail("remediation", "install the host runtime and make sure it is on PATH: https://docs.atoll.dev/install")
		}

		line := out
		if idx := bytes.IndexByte(out, '\n'); idx >= 0 {
			line = out[:idx]
		}
		fields := strings.Fields(string(line))
		if len(fields) < 2 {
			return "", errors.Newf(errors.ErrRuntimeVersion, "unexpected version output from %q: %q", path, string(line))
		}
		return fields[1], nil
	}
}

// CheckRuntimeVersion fails with an actionable message when current is
// older than minimum. Versions are compared as dotted integers; a
// missing component counts as zero.
func CheckRuntimeVersion(current, minimum string) error {
	if compareVersions(current, minimum) < 0 {
		return errors.Newf(errors.ErrRuntimeVersion,
			"host runtime %s is older than the required %s", current, minimum).
			WithDetail("remediation", "upgrade the host runtime: https://docs.atoll.dev/install")
	}
	return nil
}

func compareVersions(a, b string) int {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// ExecRuntime hands control to the application by launching the host
// runtime on the project entrypoint. The child inherits the environment,
// including the serialized manifest cache, so its own startup can skip
// regeneration.
type ExecRuntime struct {
	// Path is the host runtime executable.
	Path string
	// Entrypoint is the application module, relative to the project root.
	Entrypoint string
}

func (r *ExecRuntime) Run(ctx context.Context, app App) error {
	logger := logging.GetLogger("dev.runtime")
	args := []string{"run", "-A", r.Entrypoint}
	logging.LogCommand(r.Path, args)

	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Dir = app.ProjectRoot
	cmd.Env = os.Environ()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.Info().Str("entrypoint", r.Entrypoint).Str("buildId", app.BuildID).Msg("Starting application")
	return cmd.Run()
}
