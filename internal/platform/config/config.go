package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported dataset encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1251 = "windows-1251"
	EncodingKOI8R       = "koi8-r"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8501"`

	// Dataset source
	DatasetPath          string        `env:"DATASET_PATH" envDefault:"slava2.0_pt.csv"`
	DatasetEncoding      string        `env:"DATASET_ENCODING" envDefault:"utf-8"`
	DatasetWatchInterval time.Duration `env:"DATASET_WATCH_INTERVAL" envDefault:"30s"`

	// Dashboard
	RateLimitRPM   int     `env:"DASHBOARD_RATE_LIMIT_RPM" envDefault:"120"`
	RateLimitBurst int     `env:"DASHBOARD_RATE_LIMIT_BURST" envDefault:"30"`
	ChartYFloor    float64 `env:"CHART_Y_FLOOR" envDefault:"50"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	cfg.DatasetEncoding = NormalizeEncoding(cfg.DatasetEncoding)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DatasetPath) == "" {
		return fmt.Errorf("DATASET_PATH must not be empty")
	}

	switch c.DatasetEncoding {
	case EncodingUTF8, EncodingWindows1251, EncodingKOI8R:
	default:
		return fmt.Errorf("DATASET_ENCODING %q is not supported", c.DatasetEncoding)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT %d is out of range", c.HTTPPort)
	}

	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("DASHBOARD_RATE_LIMIT_RPM must be positive")
	}

	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("DASHBOARD_RATE_LIMIT_BURST must be positive")
	}

	if c.DatasetWatchInterval < 0 {
		return fmt.Errorf("DATASET_WATCH_INTERVAL must not be negative")
	}

	return nil
}

// NormalizeEncoding maps common spellings of an encoding name to the canonical one.
func NormalizeEncoding(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf8", "utf-8":
		return EncodingUTF8
	case "cp1251", "windows-1251", "win1251":
		return EncodingWindows1251
	case "koi8r", "koi8-r":
		return EncodingKOI8R
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}
