// Package config loads the YAML configuration for the serving commands.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Every field has a usable default so an
// absent file means a plain local server.
type Config struct {
	Listen string       `yaml:"listen"`
	Models ModelsConfig `yaml:"models"`
	Router RouterConfig `yaml:"router"`
	Redis  RedisConfig  `yaml:"redis"`
}

// ModelsConfig points at model artifacts on disk. Empty paths use the
// embedded defaults.
type ModelsConfig struct {
	Token   string `yaml:"token"`
	Command string `yaml:"command"`
	Intent  string `yaml:"intent"`
}

// RouterConfig tunes the statistical utterance router.
type RouterConfig struct {
	Disabled  bool    `yaml:"disabled"`
	Threshold float64 `yaml:"threshold"`
}

// RedisConfig enables the response cache when Address is set.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

// CacheTTL parses the TTL field. An empty TTL means no expiration.
func (r RedisConfig) CacheTTL() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid redis ttl %q: %w", r.TTL, err)
	}
	return ttl, nil
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Listen: ":8080",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Listen == "" {
		cfg.Listen = Default().Listen
	}
	if _, err := cfg.Redis.CacheTTL(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
