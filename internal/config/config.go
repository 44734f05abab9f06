// Package config loads the portal configuration. Values come from built-in
// defaults, an optional YAML file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSessionSecret is used when no secret is configured. Sessions signed
// with it can be forged by anyone who reads this source.
const DefaultSessionSecret = "lostfound-insecure-default-secret"

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	File  string `yaml:"file"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address.
func (h HTTPConfig) Addr() string {
	return h.Bind + ":" + strconv.Itoa(h.Port)
}

// DBConfig selects the database driver and connection string.
type DBConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SessionConfig holds admin session settings.
type SessionConfig struct {
	Secret        string        `yaml:"secret"`
	TTL           time.Duration `yaml:"ttl"`
	CookieName    string        `yaml:"cookie_name"`
	Secure        bool          `yaml:"secure"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Config mirrors the lostfound.yaml schema.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	DB      DBConfig      `yaml:"db"`
	Session SessionConfig `yaml:"session"`
}

// Default returns a configuration with every field populated.
func Default() Config {
	var c Config
	applyDefaults(&c)
	return c
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&c, os.LookupEnv); err != nil {
		return Config{}, err
	}
	applyDefaults(&c)

	if err := validate(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// UsesDefaultSecret reports whether sessions are signed with the fallback secret.
func (c Config) UsesDefaultSecret() bool {
	return c.Session.Secret == DefaultSessionSecret
}

// applyEnv overrides file values with environment variables.
func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.HTTP.Port = port
	}
	if v, ok := lookup("SESSION_SECRET"); ok && v != "" {
		c.Session.Secret = v
	}
	if v, ok := lookup("DB_DRIVER"); ok && v != "" {
		c.DB.Driver = v
	}
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.DB.DSN = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// applyDefaults populates zero-values.
func applyDefaults(c *Config) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.DSN == "" && c.DB.Driver == "sqlite" {
		c.DB.DSN = "lostfound.sqlite3"
	}
	if c.Session.Secret == "" {
		c.Session.Secret = DefaultSessionSecret
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "lostfound_session"
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = 10 * time.Minute
	}
}

// validate performs basic sanity checks. It does not mutate the config.
func validate(c *Config) error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.New("http.port is invalid")
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db.driver %q is not supported", c.DB.Driver)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("db.dsn is required")
	}
	if c.Session.TTL < time.Minute {
		return errors.New("session.ttl must be at least 1m")
	}
	if c.Session.SweepInterval <= 0 {
		return errors.New("session.sweep_interval must be positive")
	}
	return nil
}
