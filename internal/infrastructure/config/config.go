package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Resolver  ResolverConfig
	HTTP      HTTPConfig
	Download  DownloadConfig
	Installer InstallerConfig
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ResolverConfig holds the resolver endpoint and default form values.
type ResolverConfig struct {
	Endpoint string `envconfig:"STOREFETCH_RESOLVER_URL" default:"https://store.rg-adguard.net/api/GetFiles"`
	Type     string `envconfig:"STOREFETCH_LOOKUP_TYPE" default:"ProductId"`
	Ring     string `envconfig:"STOREFETCH_RING" default:"RP"`
	Lang     string `envconfig:"STOREFETCH_LANG" default:"en-US"`
}

// HTTPConfig holds outbound client configuration.
type HTTPConfig struct {
	Timeout      time.Duration `envconfig:"STOREFETCH_HTTP_TIMEOUT" default:"30s"`
	Retries      int           `envconfig:"STOREFETCH_HTTP_RETRIES" default:"3"`
	RetryWait    time.Duration `envconfig:"STOREFETCH_HTTP_RETRY_WAIT" default:"1s"`
	RetryMaxWait time.Duration `envconfig:"STOREFETCH_HTTP_RETRY_WAIT_MAX" default:"30s"`
	RPS          float64       `envconfig:"STOREFETCH_HTTP_RPS" default:"0"`
	UserAgent    string        `envconfig:"STOREFETCH_USER_AGENT" default:"storefetch/0.1"`
}

// DownloadConfig holds download manager configuration.
type DownloadConfig struct {
	Dir         string `envconfig:"STOREFETCH_DOWNLOAD_DIR" default:"downloads"`
	AutoInstall bool   `envconfig:"STOREFETCH_AUTO_INSTALL" default:"false"`
}

// InstallerConfig holds host installer configuration.
type InstallerConfig struct {
	Shell string `envconfig:"STOREFETCH_INSTALL_SHELL" default:"powershell"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8765"`
	Host            string        `envconfig:"HOST" default:"127.0.0.1"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
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

// LoadFiles reads dotenv files into the environment, then loads.
// Variables already set in the environment win over file values.
func LoadFiles(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
	}
	return Load()
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
		Resolver: ResolverConfig{
			Endpoint: "https://store.rg-adguard.net/api/GetFiles",
			Type:     "ProductId",
			Ring:     "RP",
			Lang:     "en-US",
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			Retries:      3,
			RetryWait:    time.Second,
			RetryMaxWait: 30 * time.Second,
			UserAgent:    "storefetch/0.1",
		},
		Download: DownloadConfig{
			Dir: "downloads",
		},
		Installer: InstallerConfig{
			Shell: "powershell",
		},
		Server: ServerConfig{
			Port:            "8765",
			Host:            "127.0.0.1",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
	}
}

// Validate checks values envconfig cannot type-check.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Resolver.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("resolver endpoint %q must be an absolute http(s) URL", c.Resolver.Endpoint))
	}
	if strings.TrimSpace(c.Download.Dir) == "" {
		errs = append(errs, errors.New("download dir must not be empty"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	if c.HTTP.Retries < 0 {
		errs = append(errs, errors.New("http retries must not be negative"))
	}
	if c.HTTP.RPS < 0 {
		errs = append(errs, errors.New("http rps must not be negative"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit rps and burst must be positive when enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Address returns the server listen address.
func (s ServerConfig) Address() string {
	return s.Host + ":" + s.Port
}
