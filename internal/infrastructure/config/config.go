package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	SessionIdle     time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
}

// BrowserConfig holds directory view and search configuration.
type BrowserConfig struct {
	StartDir        string        `envconfig:"BROWSER_START_DIR" default:"/var"`
	SearchRoot      string        `envconfig:"BROWSER_SEARCH_ROOT" default:"/"`
	SearchBatch     int           `envconfig:"BROWSER_SEARCH_BATCH" default:"256"`
	SearchFlush     time.Duration `envconfig:"BROWSER_SEARCH_FLUSH" default:"100ms"`
	SearchExclude   []string      `envconfig:"BROWSER_SEARCH_EXCLUDE" default:"/proc,/sys,/dev"`
	NewFileTemplate string        `envconfig:"BROWSER_NEW_FILE_TEMPLATE" default:""`
	ViewersFile     string        `envconfig:"BROWSER_VIEWERS_FILE" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

// LoadEnvFiles reads the given .env files (".env" when none are given) into
// the process environment. Variables already set win; missing files are
// ignored.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
			SessionIdle:     30 * time.Minute,
		},
		Browser: BrowserConfig{
			StartDir:      "/var",
			SearchRoot:    "/",
			SearchBatch:   256,
			SearchFlush:   100 * time.Millisecond,
			SearchExclude: []string{"/proc", "/sys", "/dev"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
			MaxAge:       12 * time.Hour,
		},
	}
}

// Validate rejects values the browser cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Browser.SearchBatch <= 0:
		return fmt.Errorf("BROWSER_SEARCH_BATCH must be positive, got %d", c.Browser.SearchBatch)
	case c.Browser.SearchFlush <= 0:
		return fmt.Errorf("BROWSER_SEARCH_FLUSH must be positive, got %s", c.Browser.SearchFlush)
	case c.Browser.StartDir == "":
		return errors.New("BROWSER_START_DIR must not be empty")
	case c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0:
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %d", c.RateLimit.RequestsPerSecond)
	case len(c.CORS.AllowOrigins) == 0:
		return errors.New("CORS_ALLOW_ORIGINS must not be empty")
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
