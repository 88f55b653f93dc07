// Package config loads layered configuration: built-in defaults, an optional
// YAML file named by LEADSCOUT_CONFIG, then LEADSCOUT_-prefixed environment
// variables. Later layers override earlier ones.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "LEADSCOUT_"
	configPath = "LEADSCOUT_CONFIG"
)

// Config is the full runtime configuration.
type Config struct {
	Env      string   `koanf:"env"`
	Server   Server   `koanf:"server"`
	Database Database `koanf:"database"`
	Gemini   Gemini   `koanf:"gemini"`
	Clearbit Clearbit `koanf:"clearbit"`
	Hunter   Hunter   `koanf:"hunter"`
	Scraper  Scraper  `koanf:"scraper"`
	Cache    Cache    `koanf:"cache"`
	Sources  Sources  `koanf:"sources"`
	Tasks    Tasks    `koanf:"tasks"`
	SMTP     SMTP     `koanf:"smtp"`
}

type Server struct {
	Port int `koanf:"port"`
}

type Database struct {
	URL string `koanf:"url"`
}

type Gemini struct {
	Key   string `koanf:"key"`
	Model string `koanf:"model"`
}

type Clearbit struct {
	Key string `koanf:"key"`
}

type Hunter struct {
	Key string `koanf:"key"`
}

type Scraper struct {
	// Delay is the politeness pause between page operations.
	Delay time.Duration `koanf:"delay"`
	// Sample switches the scraped-profile source to the deterministic
	// sample implementation, useful for local development.
	Sample bool `koanf:"sample"`
}

type Cache struct {
	TTL time.Duration `koanf:"ttl"`
}

type Sources struct {
	Timeout time.Duration `koanf:"timeout"`
}

type Tasks struct {
	Workers int `koanf:"workers"`
	Queue   int `koanf:"queue"`
}

type SMTP struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.From != ""
}

func defaults() Config {
	return Config{
		Env:     "development",
		Server:  Server{Port: 8080},
		Gemini:  Gemini{Model: "gemini-2.0-flash"},
		Scraper: Scraper{Delay: 2 * time.Second},
		Cache:   Cache{TTL: 7 * 24 * time.Hour},
		Sources: Sources{Timeout: 10 * time.Second},
		Tasks:   Tasks{Workers: 4, Queue: 64},
		SMTP:    SMTP{Port: 587},
	}
}

// Load assembles the configuration from all layers.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(configPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// LEADSCOUT_SERVER_PORT -> server.port. Leaf keys are single words so
	// every underscore maps to a nesting level.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Tasks.Workers <= 0 {
		return fmt.Errorf("task workers must be positive, got %d", c.Tasks.Workers)
	}
	if c.Scraper.Delay < 0 {
		return fmt.Errorf("scraper delay must not be negative")
	}
	return nil
}
