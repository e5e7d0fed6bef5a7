package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIBaseURL         = "http://localhost:3001/api"
	DefaultSocketURL          = "ws://localhost:3001/ws"
	DefaultReconnectAttempts  = 5
	DefaultReconnectDelay     = time.Second
	DefaultSignalPollInterval = time.Second
	DefaultLogLevel           = "info"
)

// Duration is a time.Duration that reads and writes as "1s", "250ms" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config represents the global ~/.gigtune/config.toml.
type Config struct {
	DefaultProfile     string   `toml:"default_profile"`
	APIBaseURL         string   `toml:"api_base_url"`
	SocketURL          string   `toml:"socket_url"`
	ReconnectAttempts  int      `toml:"reconnect_attempts"`
	ReconnectDelay     Duration `toml:"reconnect_delay"`
	SignalPollInterval Duration `toml:"signal_poll_interval"`
	HTTPTimeout        Duration `toml:"http_timeout"`
	LogLevel           string   `toml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DefaultProfile:     DefaultProfileName,
		APIBaseURL:         DefaultAPIBaseURL,
		SocketURL:          DefaultSocketURL,
		ReconnectAttempts:  DefaultReconnectAttempts,
		ReconnectDelay:     Duration{DefaultReconnectDelay},
		SignalPollInterval: Duration{DefaultSignalPollInterval},
		LogLevel:           DefaultLogLevel,
	}
}

// applyDefaults fills keys left out of the file. http_timeout stays 0 (none).
func (c *Config) applyDefaults() {
	d := Default()
	if c.APIBaseURL == "" {
		c.APIBaseURL = d.APIBaseURL
	}
	if c.SocketURL == "" {
		c.SocketURL = d.SocketURL
	}
	if c.ReconnectAttempts <= 0 {
		c.ReconnectAttempts = d.ReconnectAttempts
	}
	if c.ReconnectDelay.Duration <= 0 {
		c.ReconnectDelay = d.ReconnectDelay
	}
	if c.SignalPollInterval.Duration <= 0 {
		c.SignalPollInterval = d.SignalPollInterval
	}
	if c.HTTPTimeout.Duration < 0 {
		c.HTTPTimeout.Duration = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate rejects a default_profile that would not be a usable profile name.
func (c *Config) Validate() error {
	if c.DefaultProfile == "" {
		return nil
	}
	return ValidateName(c.DefaultProfile)
}

// Load reads config from the given path. Returns nil config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
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
