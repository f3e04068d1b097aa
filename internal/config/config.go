// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"predtrack-go/internal/catalog"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Allora configures the inference provider endpoint. BaseURL already carries
// the chain namespace; requests append only the topic id query parameter.
type Allora struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// CoinGecko configures the spot-price provider endpoint.
type CoinGecko struct {
	BaseURL string `yaml:"base_url"`
}

// Fetch tunes the shared retry/timeout policy applied to every provider call.
type Fetch struct {
	MaxRetries     int `yaml:"max_retries"`
	InitialDelayMs int `yaml:"initial_delay_ms"`
	BackoffCapMs   int `yaml:"backoff_cap_ms"`
	TimeoutMs      int `yaml:"timeout_ms"`
	RatePerMin     int `yaml:"rate_per_min"`
}

// Schedule tunes the automatic refresh cadence.
type Schedule struct {
	IntervalMs    int  `yaml:"interval_ms"`
	MinIntervalMs int  `yaml:"min_interval_ms"`
	MaxIntervalMs int  `yaml:"max_interval_ms"`
	AutoStart     bool `yaml:"auto_start"`
}

// Redis holds connection settings for the redis history backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// History selects and tunes the durable prediction history store.
type History struct {
	Limit   int    `yaml:"limit"`
	Backend string `yaml:"backend"` // "file" or "redis"
	Dir     string `yaml:"dir"`
	Redis   Redis  `yaml:"redis"`
}

// Instruments configures the tracked instrument catalog.
type Instruments struct {
	Default string               `yaml:"default"`
	Extra   []catalog.Instrument `yaml:"extra"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App         App         `yaml:"app"`
	Allora      Allora      `yaml:"allora"`
	CoinGecko   CoinGecko   `yaml:"coingecko"`
	Fetch       Fetch       `yaml:"fetch"`
	Schedule    Schedule    `yaml:"schedule"`
	History     History     `yaml:"history"`
	Instruments Instruments `yaml:"instruments"`
}

// Load reads a YAML file from disk and hydrates a Config struct. The
// ALLORA_API_KEY environment variable, when set, overrides the yaml value so
// the secret can stay out of checked-in files.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if key := os.Getenv("ALLORA_API_KEY"); key != "" {
		config.Allora.APIKey = key
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
