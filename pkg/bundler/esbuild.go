package bundler

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/types"
)

// Esbuild invokes the esbuild binary. A non-zero exit is fatal: partial
// asset output must never be served.
type Esbuild struct {
	// Path is the esbuild executable.
	Path string
}

// NewEsbuild creates an Esbuild driver for the given executable.
func NewEsbuild(path string) *Esbuild {
	return &Esbuild{Path: path}
}

func (e *Esbuild) Bundle(ctx context.Context, opts Options) (types.DependencySnapshot, error) {
	logger := logging.GetLogger("bundler.esbuild")

	metafile := filepath.Join(opts.OutDir, "meta.json")
	args := buildArgs(opts, metafile)
	logging.LogCommand(e.Path, args)

	cmd := exec.CommandContext(ctx, e.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBundler, "bundler %q failed", e.Path).
			WithDetail("stderr", stderr.String())
	}

	raw, err := os.ReadFile(metafile)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrBundler, "bundler produced no metafile").
			WithDetail("path", metafile)
	}
	// The metafile has served its purpose once parsed.
	defer func() { _ = os.Remove(metafile) }()

	snapshot, err := ParseMetafile(raw)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("bundles", len(snapshot)).
		Str("buildId", opts.BuildID).
		Msg("Bundled entrypoints")

	return snapshot, nil
}

// buildArgs assembles the esbuild command line. Entrypoints are emitted
// in sorted key order so repeated invocations are byte-identical.
func buildArgs(opts Options, metafile string) []string {
	names := make([]string, 0, len(opts.Entrypoints))
	for name := range opts.Entrypoints {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]string, 0, len(names)+10)
	for _, name := range names {
		args = append(args, name+"="+opts.Entrypoints[name])
	}

	args = append(args,
		"--bundle",
		"--format=esm",
		"--splitting",
		"--outdir="+opts.OutDir,
		"--metafile="+metafile,
	)

	if opts.JSX.Runtime != "" {
		args = append(args, "--jsx="+opts.JSX.Runtime)
	}
	if opts.JSX.ImportSource != "" {
		args = append(args, "--jsx-import-source="+opts.JSX.ImportSource)
	}
	if opts.JSX.Factory != "" {
		args = append(args, "--jsx-factory="+opts.JSX.Factory)
	}
	if opts.JSX.Fragment != "" {
		args = append(args, "--jsx-fragment="+opts.JSX.Fragment)
	}

	if opts.Dev {
		args = append(args, "--sourcemap=inline")
	} else {
		args = append(args, "--minify")
	}

	if opts.ConfigPath != "" {
		args = append(args, "--define:ATOLL_CONFIG_PATH=\""+opts.ConfigPath+"\"")
	}

	return args
}

// metafile mirrors the slice of esbuild's metafile format we consume.
type metafileDoc struct {
	Outputs map[string]struct {
		EntryPoint string `json:"entryPoint"`
		Inputs     map[string]struct {
			BytesInOutput int `json:"bytesInOutput"`
		} `json:"inputs"`
	} `json:"outputs"`
}

// ParseMetafile converts a bundler metafile into the dependency snapshot
// persisted for the served application: one entry per bundle entrypoint,
// mapping it to the sorted list of modules in its output.
func ParseMetafile(raw []byte) (types.DependencySnapshot, error) {
	var doc metafileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrBundler, "cannot parse bundler metafile")
	}

	snapshot := types.DependencySnapshot{}
	for _, output := range doc.Outputs {
		if output.EntryPoint == "" {
			continue
		}
		deps := make([]string, 0, len(output.Inputs))
		for input := range output.Inputs {
			deps = append(deps, input)
		}
		sort.Strings(deps)
		snapshot[output.EntryPoint] = deps
	}

	return snapshot, nil
}
