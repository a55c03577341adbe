// Package config loads atoll project configuration.
//
// Configuration is merged from three layers, later layers winning:
// embedded defaults, the project's atoll.toml (or atoll.yaml), and
// ATOLL_* environment variables.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/types"
)

//go:embed default.toml
var defaultConfig []byte

// Project config file names, tried in order.
const (
	FileTOML = "atoll.toml"
	FileYAML = "atoll.yaml"
)

// envPrefix namespaces the environment override layer.
const envPrefix = "ATOLL_"

// Config is the resolved project configuration.
type Config struct {
	Runtime   RuntimeConfig   `koanf:"runtime"`
	Formatter FormatterConfig `koanf:"formatter"`
	Bundler   BundlerConfig   `koanf:"bundler"`
	Dev       DevConfig       `koanf:"dev"`
	Plugins   map[string]PluginConfig `koanf:"plugins"`

	// Path is the config file the project layer was loaded from, empty
	// when the project has no config file.
	Path string `koanf:"-"`
}

// RuntimeConfig names the host runtime that serves the application and
// gates its version.
type RuntimeConfig struct {
	Path       string `koanf:"path"`
	Entrypoint string `koanf:"entrypoint"`
	Minimum    string `koanf:"minimum"`
}

// FormatterConfig names the external formatter command. The first element
// is the executable, the rest its arguments. Empty disables formatting.
type FormatterConfig struct {
	Command []string `koanf:"command"`
}

// BundlerConfig names the external bundler and its JSX settings.
type BundlerConfig struct {
	Path string          `koanf:"path"`
	JSX  types.JSXConfig `koanf:"jsx"`
}

// DevConfig holds dev-cycle toggles.
type DevConfig struct {
	UpdateCheck bool `koanf:"update_check"`
	Signals     bool `koanf:"signals"`
}

// PluginConfig declares one plugin's build entrypoints.
type PluginConfig struct {
	Entrypoints map[string]string `koanf:"entrypoints"`
}

// Load reads the merged configuration for the project at projectRoot.
func Load(projectRoot string) (*Config, error) {
	logger := logging.GetLogger("config")

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default config")
	}

	// 2. Project config file, if present
	configPath := ""
	for _, name := range []string{FileTOML, FileYAML} {
		p := filepath.Join(projectRoot, name)
		if _, err := os.Stat(p); err == nil {
			configPath = p
			break
		}
	}
	if configPath != "" {
		var parser koanf.Parser = toml.Parser()
		if strings.HasSuffix(configPath, ".yaml") {
			parser = yaml.Parser()
		}
		if err := k.Load(file.Provider(configPath), parser); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse project config").
				WithDetail("path", configPath)
		}
		logger.Debug().Str("path", configPath).Msg("Loaded project config")
	}

	// 3. Environment overrides. Double underscore separates nesting levels
	// so keys like update_check survive: ATOLL_DEV__UPDATE_CHECK=false.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}
	cfg.Path = configPath

	return &cfg, nil
}

// PluginList returns the configured plugins as types.Plugin values,
// sorted by name for deterministic entrypoint collection.
func (c *Config) PluginList() []types.Plugin {
	names := make([]string, 0, len(c.Plugins))
	for name := range c.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	plugins := make([]types.Plugin, 0, len(names))
	for _, name := range names {
		plugins = append(plugins, &configPlugin{name: name, entrypoints: c.Plugins[name].Entrypoints})
	}
	return plugins
}

// configPlugin adapts a PluginConfig to the types.Plugin interface.
type configPlugin struct {
	name        string
	entrypoints map[string]string
}

func (p *configPlugin) Name() string { return p.name }

func (p *configPlugin) Entrypoints() map[string]string {
	return p.entrypoints
}
