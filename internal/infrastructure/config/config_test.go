package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionIdle)

	// Browser config
	assert.Equal(t, "/var", cfg.Browser.StartDir)
	assert.Equal(t, "/", cfg.Browser.SearchRoot)
	assert.Equal(t, 256, cfg.Browser.SearchBatch)
	assert.Equal(t, 100*time.Millisecond, cfg.Browser.SearchFlush)
	assert.Equal(t, []string{"/proc", "/sys", "/dev"}, cfg.Browser.SearchExclude)
	assert.Empty(t, cfg.Browser.NewFileTemplate)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// CORS config
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.False(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.CORS.MaxAge)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                      "9000",
		"HOST":                      "127.0.0.1",
		"SHUTDOWN_TIMEOUT":          "3s",
		"BROWSER_START_DIR":         "/home",
		"BROWSER_SEARCH_ROOT":       "/srv",
		"BROWSER_SEARCH_BATCH":      "64",
		"BROWSER_SEARCH_FLUSH":      "250ms",
		"BROWSER_SEARCH_EXCLUDE":    "/srv/cache,**/node_modules",
		"BROWSER_NEW_FILE_TEMPLATE": "hello",
		"BROWSER_VIEWERS_FILE":      "/etc/viewers.yaml",
		"LOG_LEVEL":                 "debug",
		"LOG_DEV":                   "true",
		"RATE_LIMIT_RPS":            "500",
		"RATE_LIMIT_BURST":          "1000",
		"RATE_LIMIT_ENABLED":        "false",
		"CORS_ALLOW_ORIGINS":        "http://localhost:3000,https://files.example.com",
		"CORS_ALLOW_CREDENTIALS":    "true",
		"CORS_MAX_AGE":              "1h",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "/home", cfg.Browser.StartDir)
	assert.Equal(t, "/srv", cfg.Browser.SearchRoot)
	assert.Equal(t, 64, cfg.Browser.SearchBatch)
	assert.Equal(t, 250*time.Millisecond, cfg.Browser.SearchFlush)
	assert.Equal(t, []string{"/srv/cache", "**/node_modules"}, cfg.Browser.SearchExclude)
	assert.Equal(t, "hello", cfg.Browser.NewFileTemplate)
	assert.Equal(t, "/etc/viewers.yaml", cfg.Browser.ViewersFile)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, []string{"http://localhost:3000", "https://files.example.com"}, cfg.CORS.AllowOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, time.Hour, cfg.CORS.MaxAge)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparsable batch", "BROWSER_SEARCH_BATCH", "many"},
		{"zero batch", "BROWSER_SEARCH_BATCH", "0"},
		{"negative flush", "BROWSER_SEARCH_FLUSH", "-1s"},
		{"zero rps", "RATE_LIMIT_RPS", "0"},
		{"no cors origins", "CORS_ALLOW_ORIGINS", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BROWSER_START_DIR=/opt\nPORT=7000\n"), 0o644))

	// Variables already in the environment take precedence.
	t.Setenv("PORT", "7100")
	t.Setenv("BROWSER_START_DIR", "")
	os.Unsetenv("BROWSER_START_DIR")

	require.NoError(t, LoadEnvFiles(path, filepath.Join(dir, "missing.env")))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt", cfg.Browser.StartDir)
	assert.Equal(t, "7100", cfg.Server.Port)
}

func TestLoadViewers(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "viewers.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("viewers:\n  md: text\n  .svg: image\n"), 0o644))
	viewers, err := LoadViewers(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"md": "text", ".svg": "image"}, viewers)

	tomlPath := filepath.Join(dir, "viewers.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[viewers]\nbin = \"generic\"\n"), 0o644))
	viewers, err = LoadViewers(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bin": "generic"}, viewers)

	viewers, err = LoadViewers("")
	require.NoError(t, err)
	assert.Nil(t, viewers)

	_, err = LoadViewers(filepath.Join(dir, "viewers.json"))
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("viewers: [unclosed\n"), 0o644))
	_, err = LoadViewers(badPath)
	assert.Error(t, err)
}
