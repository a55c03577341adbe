// Package plugins resolves the plugins that contribute build entrypoints
// to a project. Plugins come from two sources: [plugins.<name>] tables in
// the project config, and standalone declaration files in the project's
// plugins/ directory.
package plugins

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/types"
)

// declExtension marks standalone plugin declaration files.
const declExtension = ".toml"

// declaration is the on-disk shape of a standalone plugin file. The name
// defaults to the file's base name when omitted.
type declaration struct {
	Name        string            `toml:"name"`
	Entrypoints map[string]string `toml:"entrypoints"`
}

// plugin is the resolved form backing types.Plugin.
type plugin struct {
	name        string
	entrypoints map[string]string
}

func (p *plugin) Name() string { return p.name }

func (p *plugin) Entrypoints() map[string]string { return p.entrypoints }

// Load resolves all plugins for the project rooted at pluginsDir's parent.
// fromConfig carries the config-declared plugins; declaration files in
// pluginsDir are added to them. A missing pluginsDir contributes nothing.
// Two plugins with the same name are fatal: entrypoint collection depends
// on unambiguous plugin identity.
//
// The result is sorted by name so downstream entrypoint collection is
// deterministic.
func Load(fsys types.FS, pluginsDir string, fromConfig []types.Plugin) ([]types.Plugin, error) {
	logger := logging.GetLogger("plugins")

	byName := make(map[string]types.Plugin, len(fromConfig))
	for _, p := range fromConfig {
		if _, dup := byName[p.Name()]; dup {
			return nil, errors.Newf(errors.ErrPluginConflict, "plugin %q declared more than once", p.Name())
		}
		byName[p.Name()] = p
	}

	declared, err := loadDeclarations(fsys, pluginsDir)
	if err != nil {
		return nil, err
	}
	for _, p := range declared {
		if _, dup := byName[p.Name()]; dup {
			return nil, errors.Newf(errors.ErrPluginConflict, "plugin %q declared in both config and %s", p.Name(), pluginsDir).
				WithDetail("name", p.Name())
		}
		byName[p.Name()] = p
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]types.Plugin, 0, len(names))
	for _, name := range names {
		result = append(result, byName[name])
	}

	logger.Debug().Int("count", len(result)).Msg("Resolved plugins")
	return result, nil
}

// loadDeclarations parses every *.toml file directly under dir.
func loadDeclarations(fsys types.FS, dir string) ([]types.Plugin, error) {
	info, err := fsys.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot access plugins directory").
			WithDetail("path", dir)
	}
	if !info.IsDir() {
		return nil, nil
	}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read plugins directory").
			WithDetail("path", dir)
	}

	var result []types.Plugin
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != declExtension {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := fsys.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read plugin declaration").
				WithDetail("path", path)
		}

		var decl declaration
		if err := toml.Unmarshal(data, &decl); err != nil {
			return nil, errors.Wrap(err, errors.ErrPluginParse, "cannot parse plugin declaration").
				WithDetail("path", path)
		}
		if decl.Name == "" {
			decl.Name = strings.TrimSuffix(entry.Name(), declExtension)
		}

		result = append(result, &plugin{name: decl.Name, entrypoints: decl.Entrypoints})
	}

	return result, nil
}
