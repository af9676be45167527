// Package config loads the server configuration from a YAML file with
// sane defaults for local development.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the kinoflow server configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// DataDir is where graph documents and file-backed sessions live.
	DataDir string `yaml:"data_dir"`

	// RedisURL enables the Redis session store when non-empty
	// (host:port, e.g. "localhost:6379").
	RedisURL string `yaml:"redis_url"`

	// RedisDB selects the Redis database.
	RedisDB int `yaml:"redis_db"`

	// LogJSON switches the logger to JSON output.
	LogJSON bool `yaml:"log_json"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the local-development configuration.
func Default() Config {
	return Config{
		Addr:     ":8080",
		DataDir:  ".kinoflow",
		LogLevel: "info",
	}
}

// Load reads the YAML file at path, layered over Default. A missing path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
