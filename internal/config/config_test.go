package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-test-secret-of-32-characters!!"

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test. t.Setenv restores the old values afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORE_DRIVER", "DB_PATH", "DATABASE_URL",
		"JWT_SECRET", "JWT_TTL", "GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "GITHUB_CALLBACK_URL",
		"SENTRY_DSN", "APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "SEED_ON_START",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "data/marketplace.db", cfg.Store.Path)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.SecureCookies())
	assert.False(t, cfg.GitHubEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  port: 9000
store:
  driver: postgres
  url: postgres://file/db
auth:
  jwt_secret: from-the-file-0123456789
  token_ttl: 24h
log:
  level: debug
  format: json
env: production
seed_on_start: true
`)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_TTL", "1h")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://env/db", cfg.Store.URL, "env overrides the file")
	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.True(t, cfg.SeedOnStart)
	assert.True(t, cfg.SecureCookies())

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_BadInput(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(writeFile(t, "server: [unclosed"))
		assert.Error(t, err)
	})
	t.Run("non-numeric PORT", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "eighty")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("bad SEED_ON_START", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SEED_ON_START", "sometimes")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Auth.JWTSecret = testSecret
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }},
		{"postgres without url", func(c *Config) { c.Store.Driver = DriverPostgres }},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "too-short" }},
		{"bad ttl", func(c *Config) { c.Auth.TokenTTL = "a week" }},
		{"negative ttl", func(c *Config) { c.Auth.TokenTTL = "-1h" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.edit(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGitHubCallbackURL(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.GitHubCallbackURL())

	cfg.Auth.GitHub.CallbackURL = "https://market.example.com/auth/github/callback"
	assert.Equal(t, "https://market.example.com/auth/github/callback", cfg.GitHubCallbackURL())
}
