// Package config handles configuration for the FireVault process, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"path/filepath"
)

// Config holds runtime settings.
//
// Fields:
//   - ListenAddr: bind address for the local authorization service. Must
//     stay on the loopback interface; the service is not meant to be
//     reachable by remote parties.
//   - DataDir: directory holding the account collection and the per-user
//     vault databases.
type Config struct {
	ListenAddr string
	DataDir    string
}

// LoadDefaults populates Config with the standard local-install values.
func (c *Config) LoadDefaults() {
	c.ListenAddr = "127.0.0.1:5000"

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.DataDir = filepath.Join(home, ".firevault")
}

// AccountsFile is the path of the flat account collection.
func (c *Config) AccountsFile() string {
	return filepath.Join(c.DataDir, "users.json")
}

// VaultDir is the directory holding per-user vault databases.
func (c *Config) VaultDir() string {
	return filepath.Join(c.DataDir, "vaults")
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
