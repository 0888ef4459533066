// Package config handles configuration for microej-driver.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultProxyBaseURL   = "http://localhost:4724/"
	DefaultListen         = "127.0.0.1:4723"
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogFile        = "microej-driver.log"
)

// Environment overrides.
const (
	EnvProxyURL = "MICROEJ_PROXY_URL"
	EnvListen   = "MICROEJ_LISTEN"
)

// Config represents the driver configuration (config.yaml).
type Config struct {
	// ProxyBaseURL overrides the default local proxy endpoint.
	ProxyBaseURL string `yaml:"proxyBaseUrl"`

	// W3C server settings
	Listen         string        `yaml:"listen"`
	RequestTimeout time.Duration `yaml:"requestTimeout"` // proxy HTTP timeout, 0 = none

	Log LogConfig `yaml:"log"`
}

// LogConfig controls the log file and its rotation.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ProxyBaseURL:   DefaultProxyBaseURL,
		Listen:         DefaultListen,
		RequestTimeout: DefaultRequestTimeout,
		Log: LogConfig{
			File:       filepath.Join(GetLogDir(), DefaultLogFile),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load loads configuration from a file. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.normalize()

	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return defaults
	return Default(), nil
}

// ApplyEnv overrides fields from MICROEJ_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvProxyURL); v != "" {
		c.ProxyBaseURL = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	c.normalize()
}

// SetProxyBaseURL replaces the proxy URL, keeping the trailing slash invariant.
func (c *Config) SetProxyBaseURL(u string) {
	c.ProxyBaseURL = u
	c.normalize()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ProxyBaseURL)
	if err != nil {
		return fmt.Errorf("invalid proxyBaseUrl %q: %w", c.ProxyBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid proxyBaseUrl %q: scheme must be http or https", c.ProxyBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid proxyBaseUrl %q: missing host", c.ProxyBaseURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid requestTimeout %v: must not be negative", c.RequestTimeout)
	}
	return nil
}

func (c *Config) normalize() {
	if c.ProxyBaseURL == "" {
		c.ProxyBaseURL = DefaultProxyBaseURL
	}
	if !strings.HasSuffix(c.ProxyBaseURL, "/") {
		c.ProxyBaseURL += "/"
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
}
