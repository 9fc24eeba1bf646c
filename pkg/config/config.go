package config

import (
	"fmt"
	"net"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the server configuration.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values. The plan document
// (connections and queries) is separate and pointed to by PlanPath.
type Config struct {
	// Server configuration. BindAddr and Port override the addresses
	// listed in the plan document when set.
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:""`
	Port     string `yaml:"port" env:"PORT" env-default:""`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// PlanPath locates the plan document with connections and queries.
	PlanPath string `yaml:"plan" env:"PSQL_PLAN" env-default:"plan.yaml"`

	// Pool sizing applied to every opened connection pool.
	Pool PoolConfig `yaml:"pool"`

	// Injection scanning of string parameter values.
	Scan ScanConfig `yaml:"scan"`
}

// PoolConfig holds database/sql pool sizing.
type PoolConfig struct {
	MaxOpenConns       int `yaml:"max_open_conns" env:"POOL_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns       int `yaml:"max_idle_conns" env:"POOL_MAX_IDLE_CONNS" env-default:"2"`
	ConnMaxLifetimeMin int `yaml:"conn_max_lifetime_minutes" env:"POOL_CONN_MAX_LIFETIME_MINUTES" env-default:"30"`
}

// ScanConfig controls the libinjection scan of bound string values.
type ScanConfig struct {
	Enabled bool `yaml:"enabled" env:"SCAN_ENABLED" env-default:"true"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The file is optional; without it the environment alone is
// read. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return cfg, nil
}

// Addr returns the bind address override, or "" if the plan document's
// addresses should be used.
func (c *Config) Addr() string {
	if c.Port == "" {
		return ""
	}
	host := c.BindAddr
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, c.Port)
}
