// Package common provides shared utilities for fnoscan
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for fnoscan
type Config struct {
	Environment  string             `toml:"environment"`
	Server       ServerConfig       `toml:"server"`
	Refresh      RefreshConfig      `toml:"refresh"`
	Calendar     CalendarConfig     `toml:"calendar"`
	Storage      StorageConfig      `toml:"storage"`
	Clients      ClientsConfig      `toml:"clients"`
	Housekeeping HousekeepingConfig `toml:"housekeeping"`
	Logging      LoggingConfig      `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// RefreshConfig controls the background refresh pipeline.
type RefreshConfig struct {
	Interval     string `toml:"interval"`
	MaxSymbols   int    `toml:"max_symbols" validate:"min=1"`
	BatchSize    int    `toml:"batch_size" validate:"min=1"`
	Concurrency  int    `toml:"concurrency" validate:"min=1"`
	HistoryRange string `toml:"history_range" validate:"required"`
	FallbackSize int    `toml:"fallback_size" validate:"min=0"`
	UniverseFile string `toml:"universe_file"` // empty = built-in F&O universe
}

// GetInterval parses and returns the refresh interval
func (c *RefreshConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// CalendarConfig holds exchange session configuration.
type CalendarConfig struct {
	Timezone     string `toml:"timezone" validate:"required"`
	MarketOpen   string `toml:"market_open" validate:"required"`
	MarketClose  string `toml:"market_close" validate:"required"`
	HolidaysFile string `toml:"holidays_file"` // empty = built-in NSE list
}

// StorageConfig holds snapshot persistence configuration.
type StorageConfig struct {
	Backend   string `toml:"backend" validate:"oneof=file surrealdb"`
	Path      string `toml:"path"`
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Provider string      `toml:"provider" validate:"oneof=yahoo eodhd"`
	Yahoo    YahooConfig `toml:"yahoo"`
	EODHD    EODHDConfig `toml:"eodhd"`
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL      string `toml:"base_url"`
	RateLimit    int    `toml:"rate_limit"`
	Timeout      string `toml:"timeout"`
	SymbolSuffix string `toml:"symbol_suffix"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key"`
	RateLimit    int    `toml:"rate_limit"`
	Timeout      string `toml:"timeout"`
	SymbolSuffix string `toml:"symbol_suffix"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// HousekeepingConfig holds cron specs (with seconds field) for maintenance jobs.
type HousekeepingConfig struct {
	CalendarCheck  string `toml:"calendar_check"`
	StalenessCheck string `toml:"staleness_check"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Refresh: RefreshConfig{
			Interval:     "60s",
			MaxSymbols:   25,
			BatchSize:    10,
			Concurrency:  1,
			HistoryRange: "6mo",
			FallbackSize: 50,
		},
		Calendar: CalendarConfig{
			Timezone:    "Asia/Kolkata",
			MarketOpen:  "09:15",
			MarketClose: "15:30",
		},
		Storage: StorageConfig{
			Backend:   "file",
			Path:      "data/snapshot",
			Address:   "ws://localhost:8000/rpc",
			Username:  "root",
			Password:  "root",
			Namespace: "fnoscan",
			Database:  "market",
		},
		Clients: ClientsConfig{
			Provider: "yahoo",
			Yahoo: YahooConfig{
				BaseURL:      "https://query1.finance.yahoo.com",
				RateLimit:    2,
				Timeout:      "20s",
				SymbolSuffix: ".NS",
			},
			EODHD: EODHDConfig{
				BaseURL:      "https://eodhd.com/api",
				RateLimit:    10,
				Timeout:      "30s",
				SymbolSuffix: ".NSE",
			},
		},
		Housekeeping: HousekeepingConfig{
			CalendarCheck:  "0 0 8 * * *",
			StalenessCheck: "0 */5 * * * *",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Outputs:  []string{"console"},
			FilePath: "./logs/fnoscan.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FNOSCAN_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FNOSCAN_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FNOSCAN_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FNOSCAN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FNOSCAN_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "snapshot")
	}

	if backend := os.Getenv("FNOSCAN_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if provider := os.Getenv("FNOSCAN_PROVIDER"); provider != "" {
		config.Clients.Provider = strings.ToLower(provider)
	}

	if interval := os.Getenv("FNOSCAN_REFRESH_INTERVAL"); interval != "" {
		config.Refresh.Interval = interval
	}

	if c := os.Getenv("FNOSCAN_CONCURRENCY"); c != "" {
		if n, err := strconv.Atoi(c); err == nil {
			config.Refresh.Concurrency = n
		}
	}

	for _, name := range []string{"EODHD_API_KEY", "FNOSCAN_EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.EODHD.APIKey = v
			break
		}
	}
}

// Validate checks struct constraints on the loaded configuration.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
