package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all loader configuration
type Config struct {
	Loader   LoaderConfig
	Workers  WorkerConfig
	Fetch    FetchConfig
	Document DocumentConfig
	Logging  LogConfig
	Metrics  MetricsConfig
	Server   ServerConfig
}

// LoaderConfig selects the batch and where its assets live
type LoaderConfig struct {
	Manifest string `envconfig:"PAGELOADER_MANIFEST" default:""`
	Root     string `envconfig:"PAGELOADER_ROOT" default:"."`
	BaseURL  string `envconfig:"PAGELOADER_BASE_URL" default:""`
	Output   string `envconfig:"PAGELOADER_OUTPUT" default:"-"`
}

// WorkerConfig holds decompression worker settings
type WorkerConfig struct {
	StartupTimeout time.Duration `envconfig:"PAGELOADER_WORKER_STARTUP_TIMEOUT" default:"5s"`
}

// FetchConfig holds transport settings
type FetchConfig struct {
	Timeout   time.Duration `envconfig:"PAGELOADER_FETCH_TIMEOUT" default:"30s"`
	UserAgent string        `envconfig:"PAGELOADER_USER_AGENT" default:"pageloader/1.0"`
}

// DocumentConfig holds injection settings
type DocumentConfig struct {
	ScriptTimeout  time.Duration `envconfig:"PAGELOADER_SCRIPT_TIMEOUT" default:"5s"`
	SanitizeMarkup bool          `envconfig:"PAGELOADER_SANITIZE_MARKUP" default:"false"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds the optional metrics endpoint
type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR" default:""`
}

// ServerConfig holds the preview server settings
type ServerConfig struct {
	Addr        string   `envconfig:"PAGELOADER_ADDR" default:":8080"`
	ReloadRate  float64  `envconfig:"PAGELOADER_RELOAD_RATE" default:"1"`
	ReloadBurst int      `envconfig:"PAGELOADER_RELOAD_BURST" default:"3"`
	CORSOrigins []string `envconfig:"PAGELOADER_CORS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables
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

// LoadOrDefault loads configuration from environment or returns default
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			Root:   ".",
			Output: "-",
		},
		Workers: WorkerConfig{
			StartupTimeout: 5 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			UserAgent: "pageloader/1.0",
		},
		Document: DocumentConfig{
			ScriptTimeout: 5 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			ReloadRate:  1,
			ReloadBurst: 3,
			CORSOrigins: []string{"*"},
		},
	}
}

// Validate rejects settings the loader cannot run with
func (c *Config) Validate() error {
	if c.Workers.StartupTimeout <= 0 {
		return fmt.Errorf("worker startup timeout must be positive, got %s", c.Workers.StartupTimeout)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Document.ScriptTimeout <= 0 {
		return fmt.Errorf("script timeout must be positive, got %s", c.Document.ScriptTimeout)
	}
	if c.Server.ReloadRate <= 0 || c.Server.ReloadBurst <= 0 {
		return fmt.Errorf("reload rate and burst must be positive, got %v/%d", c.Server.ReloadRate, c.Server.ReloadBurst)
	}
	if c.Loader.BaseURL != "" {
		u, err := url.Parse(c.Loader.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("base URL must be an absolute http(s) URL: %q", c.Loader.BaseURL)
		}
	}
	return nil
}
