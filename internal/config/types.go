// Package config loads the server configuration for a components root.
// Configuration lives in an optional config.yaml next to the category
// directories; every field has a sensible default so a bare components
// tree serves out of the box.
package config

const (
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStdio is the standard I/O transport.
	TransportStdio = "stdio"
)

// Config is the top-level configuration for a loom server.
type Config struct {
	// Name is advertised to MCP clients during initialization.
	Name string `yaml:"name,omitempty"`

	Transport string `yaml:"transport,omitempty"` // default: stdio
	Host      string `yaml:"host,omitempty"`      // default: localhost
	Port      int    `yaml:"port,omitempty"`      // default: 8080

	// DuplicatePolicy controls what happens when two descriptors claim
	// the same category/name pair: error, replace, ignore, or
	// warn-and-replace.
	DuplicatePolicy string `yaml:"duplicatePolicy,omitempty"`

	// StrictSchemas promotes missing output-schema files from warnings
	// to load failures.
	StrictSchemas bool `yaml:"strictSchemas,omitempty"`

	// DebounceMs is the hot-reload debounce window in milliseconds.
	DebounceMs int `yaml:"debounceMs,omitempty"`
}

// Default returns the configuration used when no config.yaml exists.
func Default() Config {
	return Config{
		Name:       "loom",
		Transport:  TransportStdio,
		Host:       "localhost",
		Port:       8080,
		DebounceMs: 250,
	}
}

// ValidTransport reports whether t names a supported transport.
func ValidTransport(t string) bool {
	switch t {
	case TransportStreamableHTTP, TransportSSE, TransportStdio:
		return true
	}
	return false
}
