// Package config reads the process's environment-variable configuration.
package config

import "os"

// Config holds every environment-tunable knob the CLI entrypoint reads.
type Config struct {
	// SocketPath is the local stream socket the peer binds (server) or
	// dials (client).
	SocketPath string
	// MonitorAddr is the listen address for the read-only HTTP/WebSocket
	// monitor sidecar (internal/monitor). Empty disables the sidecar.
	MonitorAddr string
	// APIKey guards the monitor's mutating endpoints (webhook
	// registration). A default development key is used when unset.
	APIKey string
}

const (
	defaultSocketPath = "/tmp/securelink.sock"
	defaultAPIKey     = "dev-api-key"
)

// Load reads Config from the environment, filling in defaults for unset
// variables.
func Load() Config {
	cfg := Config{
		SocketPath:  os.Getenv("SECURELINK_SOCKET"),
		MonitorAddr: os.Getenv("SECURELINK_MONITOR_ADDR"),
		APIKey:      os.Getenv("SECURELINK_API_KEY"),
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = defaultSocketPath
	}
	if cfg.APIKey == "" {
		cfg.APIKey = defaultAPIKey
	}
	return cfg
}
