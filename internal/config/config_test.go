package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:5000", c.ListenAddr)
	assert.NotEmpty(t, c.DataDir)
}

func TestDerivedPaths(t *testing.T) {
	c := &Config{DataDir: filepath.Join("some", "dir")}

	assert.Equal(t, filepath.Join("some", "dir", "users.json"), c.AccountsFile())
	assert.Equal(t, filepath.Join("some", "dir", "vaults"), c.VaultDir())
}
