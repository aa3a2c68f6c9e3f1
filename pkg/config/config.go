// Package config loads engine configuration from config.yaml and the
// environment. Environment variables override YAML values; secrets only
// come from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the engine.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// Store is the metadata store configuration.
	Store StoreConfig `yaml:"store"`

	// Query holds query execution settings.
	Query QueryConfig `yaml:"query"`

	// NL holds natural language query generation settings.
	NL NLConfig `yaml:"nl"`
}

// StoreConfig holds metadata store settings.
type StoreConfig struct {
	// Path is the SQLite file backing the metadata store.
	Path string `yaml:"path" env:"STORE_PATH" env-default:"queryforge.db"`
}

// QueryConfig holds query execution settings.
type QueryConfig struct {
	// ConnectTimeout bounds connection probes against target databases.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"QUERY_CONNECT_TIMEOUT" env-default:"10s"`
	// ExecTimeout bounds a single statement's execution. Zero disables
	// the bound.
	ExecTimeout time.Duration `yaml:"exec_timeout" env:"QUERY_EXEC_TIMEOUT" env-default:"30s"`
}

// NLConfig holds language model settings for natural language querying.
// Generation is disabled when APIKey is empty.
type NLConfig struct {
	Provider    string  `yaml:"provider" env:"NL_PROVIDER" env-default:"deepseek"`
	Endpoint    string  `yaml:"endpoint" env:"NL_ENDPOINT" env-default:"https://api.deepseek.com/v1"`
	Model       string  `yaml:"model" env:"NL_MODEL" env-default:"deepseek-chat"`
	APIKey      string  `yaml:"-" env:"NL_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"NL_TEMPERATURE" env-default:"0.1"`
}

// IsConfigured reports whether natural language querying can be enabled.
func (c *NLConfig) IsConfigured() bool {
	return c.APIKey != "" && c.Model != ""
}

// Load reads configuration from config.yaml (when present) and the
// environment.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	return cfg, nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}
