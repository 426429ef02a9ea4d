package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the kiln configuration file (~/.config/kiln/config.yaml).
// Fields are pointers where a zero value is meaningful, so "not set" can be
// distinguished.
type Config struct {
	WeightsPath   string `yaml:"weights_path"`
	ServerAddress string `yaml:"server_address"`

	Hidden *int64 `yaml:"hidden"`
	Seed   *int64 `yaml:"seed"`

	CacheCapacity *int64 `yaml:"cache_capacity"`

	LogLevel string `yaml:"log_level"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kiln", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file does
// not exist.
func LoadConfig() (Config, error) {
	path := configPath()
	if path == "" {
		return Config{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyServeConfig applies config file defaults to serve command variables
// when the corresponding CLI flag was not explicitly set.
func applyServeConfig(c *cli.Command, cfg Config, addr, weights *string, capacity *int64) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.WeightsPath != "" && !c.IsSet("weights") {
		*weights = cfg.WeightsPath
	}
	if cfg.CacheCapacity != nil && !c.IsSet("cache-capacity") {
		*capacity = *cfg.CacheCapacity
	}
}

// applyModelConfig applies config file model defaults shared by serve and
// generate.
func applyModelConfig(c *cli.Command, cfg Config, hidden, seed *int64) {
	if cfg.Hidden != nil && !c.IsSet("hidden") {
		*hidden = *cfg.Hidden
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		*seed = *cfg.Seed
	}
}
