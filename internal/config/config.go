package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultSchoolURL   = "http://127.0.0.1:8081"
	DefaultHTTPTimeout = 15
)

// Config represents the global ~/.classnotes/config.toml.
type Config struct {
	DefaultSession     string `toml:"default_session"`
	SchoolURL          string `toml:"school_url"`
	DaemonAddr         string `toml:"daemon_addr,omitempty"`
	Environment        string `toml:"environment,omitempty"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		SchoolURL:          DefaultSchoolURL,
		Environment:        "development",
		HTTPTimeoutSeconds: DefaultHTTPTimeout,
	}
}

// HTTPTimeout returns the REST request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return DefaultHTTPTimeout * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load reads config from the given path. Returns nil config and error if file missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault reads the config at path, falling back to Default when the
// file does not exist, then applies the environment overlay.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// ApplyEnv overlays CLASSNOTES_* variables (after loading an optional .env)
// on top of cfg.
func ApplyEnv(cfg *Config) {
	loadDotEnv()
	if v := os.Getenv("CLASSNOTES_SESSION"); v != "" {
		cfg.DefaultSession = v
	}
	if v := os.Getenv("CLASSNOTES_SCHOOL_URL"); v != "" {
		cfg.SchoolURL = v
	}
	if v := os.Getenv("CLASSNOTES_DAEMON_ADDR"); v != "" {
		cfg.DaemonAddr = v
	}
	if v := os.Getenv("CLASSNOTES_ENV"); v != "" {
		cfg.Environment = v
	}
	if v, err := strconv.Atoi(os.Getenv("CLASSNOTES_HTTP_TIMEOUT")); err == nil && v > 0 {
		cfg.HTTPTimeoutSeconds = v
	}
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
