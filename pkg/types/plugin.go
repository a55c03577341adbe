package types

// Plugin is a build-time extension that may contribute its own bundle
// entrypoints. Plugins declaring zero entrypoints are valid.
type Plugin interface {
	// Name returns the plugin's unique name, used to namespace its
	// entrypoint keys.
	Name() string

	// Entrypoints returns the plugin's declared build entrypoints as a
	// mapping from entry name to source URL.
	Entrypoints() map[string]string
}

// EntrypointMap maps logical bundle names to the source URLs handed to the
// bundler. Keys are namespaced (main, deserializer, signals, island-<id>,
// plugin-<name>-<entry>) so independently contributed entries cannot
// collide.
type EntrypointMap map[string]string

// JSXConfig carries the JSX transform settings forwarded to the bundler.
type JSXConfig struct {
	Runtime      string `koanf:"runtime" json:"runtime"`
	ImportSource string `koanf:"import_source" json:"importSource"`
	Factory      string `koanf:"factory" json:"factory"`
	Fragment     string `koanf:"fragment" json:"fragment"`
}
