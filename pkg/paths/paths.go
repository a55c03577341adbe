// Package paths provides centralized path handling for atoll.
// It resolves the project layout (routes/, islands/, generated output)
// relative to the project root and implements XDG Base Directory
// compliance for atoll's own cache and state files.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/atollweb/atoll/pkg/errors"
)

// Environment variable names
const (
	// EnvProjectRoot overrides the project root discovery
	EnvProjectRoot = "ATOLL_PROJECT_ROOT"

	// EnvCacheDir overrides the XDG cache directory for atoll
	EnvCacheDir = "ATOLL_CACHE_DIR"
)

// Project layout names
// IMPORTANT: These constants define atoll's on-disk conventions and are NOT
// user-configurable. The framework's server resolves routes and islands by
// the same names, so they must remain consistent across installations.
const (
	// RoutesDirName is the directory scanned for route modules
	RoutesDirName = "routes"

	// IslandsDirName is the directory scanned for island modules
	IslandsDirName = "islands"

	// PluginsDirName is the directory scanned for plugin declaration files
	PluginsDirName = "plugins"

	// OutputDirName is the directory that receives generated output
	OutputDirName = "_atoll"

	// AssetsDirName is the subdirectory of the output dir holding built assets
	AssetsDirName = "assets"

	// ManifestFileName is the generated manifest module
	ManifestFileName = "manifest.gen.ts"

	// DepsFileName is the generated dependency snapshot module
	DepsFileName = "deps.gen.ts"

	// AtollDirName is the directory name for atoll-specific XDG files
	AtollDirName = "atoll"
)

// Paths provides centralized path management for an atoll project
type Paths interface {
	Root() string
	RoutesDir() string
	IslandsDir() string
	PluginsDir() string
	OutputDir() string
	AssetsDir() string
	ManifestFile() string
	DepsFile() string
	CacheDir() string
	StateDir() string
}

// paths provides centralized path management for atoll
type paths struct {
	// root is the project root directory
	root string

	// xdgCache is the XDG cache directory
	xdgCache string

	// xdgState is the XDG state directory
	xdgState string
}

// New creates a new Paths instance rooted at projectRoot.
// If projectRoot is empty, it is taken from ATOLL_PROJECT_ROOT or falls
// back to the current working directory.
func New(projectRoot string) (Paths, error) {
	p := &paths{}

	if projectRoot == "" {
		projectRoot = os.Getenv(EnvProjectRoot)
	}
	if projectRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to determine working directory")
		}
		projectRoot = cwd
	}

	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for project root")
	}
	p.root = absRoot

	p.setupXDGDirs()

	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if cacheDir := os.Getenv(EnvCacheDir); cacheDir != "" {
		p.xdgCache = cacheDir
	} else {
		p.xdgCache = filepath.Join(xdg.CacheHome, AtollDirName)
	}

	// XDG state, used for log files and the update-check stamp
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, AtollDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", AtollDirName)
	}
}

func (p *paths) Root() string {
	return p.root
}

func (p *paths) RoutesDir() string {
	return filepath.Join(p.root, RoutesDirName)
}

func (p *paths) IslandsDir() string {
	return filepath.Join(p.root, IslandsDirName)
}

func (p *paths) PluginsDir() string {
	return filepath.Join(p.root, PluginsDirName)
}

func (p *paths) OutputDir() string {
	return filepath.Join(p.root, OutputDirName)
}

func (p *paths) AssetsDir() string {
	return filepath.Join(p.OutputDir(), AssetsDirName)
}

func (p *paths) ManifestFile() string {
	return filepath.Join(p.OutputDir(), ManifestFileName)
}

func (p *paths) DepsFile() string {
	return filepath.Join(p.OutputDir(), DepsFileName)
}

func (p *paths) CacheDir() string {
	return p.xdgCache
}

func (p *paths) StateDir() string {
	return p.xdgState
}
