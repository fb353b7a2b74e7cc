// Package config loads server configuration from an optional YAML file and
// the environment.
//
// PRECEDENCE (lowest to highest):
//  1. DefaultConfig()
//  2. the YAML file, if it exists
//  3. environment variables (PORT, DB_PATH, JWT_SECRET, ...)
//
// Environment variables win so that one checked-in config.yaml can serve
// every deployment, with secrets injected by the platform.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ValidDrivers lists the storage backends server.OpenStore knows.
var ValidDrivers = []string{DriverMemory, DriverSQLite, DriverPostgres}

// minSecretLength matches auth.NewTokenService.
const minSecretLength = 16

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	Sentry SentryConfig `yaml:"sentry"`

	// Env names the deployment ("development", "production"). It tags Sentry
	// events and turns on Secure cookies outside development.
	Env string `yaml:"env"`

	// SeedOnStart inserts the demo catalog when the store has no categories.
	SeedOnStart bool `yaml:"seed_on_start"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // memory | sqlite | postgres
	Path   string `yaml:"path"`   // sqlite file
	URL    string `yaml:"url"`    // postgres connection string
}

type AuthConfig struct {
	JWTSecret string       `yaml:"jwt_secret"`
	TokenTTL  string       `yaml:"token_ttl"` // Go duration, e.g. "168h"
	GitHub    GitHubConfig `yaml:"github"`
}

// GitHubConfig enables GitHub sign-in when both id and secret are set.
type GitHubConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	CallbackURL  string `yaml:"callback_url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

type SentryConfig struct {
	DSN string `yaml:"dsn"`
}

// DefaultConfig returns a config that runs locally with no file at all,
// except for JWT_SECRET, which must always be supplied.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "data/marketplace.db",
		},
		Auth: AuthConfig{
			TokenTTL: "168h",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Env: "development",
	}
}

// Load reads the YAML file at path (a missing file is not an error), then
// applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}

	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.Path, "DB_PATH")
	setString(&c.Store.URL, "DATABASE_URL")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.TokenTTL, "JWT_TTL")
	setString(&c.Auth.GitHub.ClientID, "GITHUB_CLIENT_ID")
	setString(&c.Auth.GitHub.ClientSecret, "GITHUB_CLIENT_SECRET")
	setString(&c.Auth.GitHub.CallbackURL, "GITHUB_CALLBACK_URL")

	setString(&c.Sentry.DSN, "SENTRY_DSN")
	setString(&c.Env, "APP_ENV")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if v := os.Getenv("SEED_ON_START"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SEED_ON_START %q: %w", v, err)
		}
		c.SeedOnStart = seed
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports the first setting the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if !slices.Contains(ValidDrivers, c.Store.Driver) {
		return fmt.Errorf("invalid store driver: %q (valid: %v)", c.Store.Driver, ValidDrivers)
	}
	if c.Store.Driver == DriverSQLite && c.Store.Path == "" {
		return errors.New("store path is required for the sqlite driver (set DB_PATH)")
	}
	if c.Store.Driver == DriverPostgres && c.Store.URL == "" {
		return errors.New("store url is required for the postgres driver (set DATABASE_URL)")
	}

	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT secret must be at least %d characters (set JWT_SECRET)", minSecretLength)
	}
	if ttl, err := time.ParseDuration(c.Auth.TokenTTL); err != nil || ttl <= 0 {
		return fmt.Errorf("invalid token ttl: %q", c.Auth.TokenTTL)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		return fmt.Errorf("invalid log format: %q (valid: text, json)", f)
	}
	return nil
}

// TokenTTL returns the JWT lifetime. Validate has already rejected bad values;
// the fallback only matters for unvalidated configs.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (c *Config) GitHubEnabled() bool {
	return c.Auth.GitHub.ClientID != "" && c.Auth.GitHub.ClientSecret != ""
}

// GitHubCallbackURL falls back to the local callback route.
func (c *Config) GitHubCallbackURL() string {
	if c.Auth.GitHub.CallbackURL != "" {
		return c.Auth.GitHub.CallbackURL
	}
	return fmt.Sprintf("http://localhost:%d/auth/github/callback", c.Server.Port)
}

// SecureCookies is true everywhere except local development.
func (c *Config) SecureCookies() bool {
	return c.Env != "" && c.Env != "development"
}

// LogLevel parses Log.Level into a slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level: %q", c.Log.Level)
}
