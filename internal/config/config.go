// Package config loads the CLI configuration file.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// StorageDir is where draft and session snapshots live. Empty
	// means in-memory only.
	StorageDir string `yaml:"storageDir"`
	// BackendURL is the guide store endpoint. Empty disables remote
	// operations.
	BackendURL string `yaml:"backendUrl"`
	Debug      bool   `yaml:"debug"`
}

func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Config{}
	}
	return &Config{
		StorageDir: filepath.Join(home, ".guidecraft"),
	}
}

// Load reads a YAML config, falling back to defaults when the file
// does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	return cfg, nil
}
