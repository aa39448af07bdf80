// Package config loads the UDP tracker's configuration: log level, an
// optional fixed secret, usage-statistics toggle, and the list of bound
// UDP tracker entries.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// UDPTrackerConfig is one entry of the udp_trackers list.
type UDPTrackerConfig struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
}

// Config is the top-level configuration document for the UDP tracker
// front end that consumes this subsystem.
type Config struct {
	LogLevel string `toml:"log_level"`
	// SecretHex is a 64-character hex-encoded 32-byte ServerSecret. If
	// empty, the tracker generates a random secret at start-up — see
	// tracker/secretgen.
	SecretHex string `toml:"secret_hex"`
	// TrackerUsageStatistics enables the admin dashboard (tracker/admin).
	TrackerUsageStatistics bool               `toml:"tracker_usage_statistics"`
	UDPTrackers            []UDPTrackerConfig `toml:"udp_trackers"`
}

// Default returns a configuration with one enabled UDP tracker bound to
// the BEP-15 default port, a random secret, and no usage statistics.
func Default() Config {
	return Config{
		LogLevel: "info",
		UDPTrackers: []UDPTrackerConfig{
			{Enabled: true, BindAddress: "0.0.0.0:6969"},
		},
	}
}

// Load parses a TOML configuration file at path.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: load %q: %w", path, err)
	}
	return cfg, nil
}

// EnabledUDPTrackers returns the bind addresses of every enabled UDP
// tracker entry.
func (c Config) EnabledUDPTrackers() []string {
	var out []string
	for _, t := range c.UDPTrackers {
		if t.Enabled {
			out = append(out, t.BindAddress)
		}
	}
	return out
}
