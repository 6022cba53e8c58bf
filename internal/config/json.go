package config

import (
	"encoding/json"
	"os"

	"github.com/firevault/firevault/internal/flagx"
)

// JSONConfig is the DTO read from an optional JSON configuration file
// (-c/-config). After unmarshalling, set fields are copied onto Config.
type JSONConfig struct {
	ListenAddr string `json:"listen_addr"`
	DataDir    string `json:"data_dir"`
}

func parseJSON(config *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if c.DataDir != "" {
		config.DataDir = c.DataDir
	}
}
