// Package config loads the chromelogger server configuration.
//
// Values are resolved in order: built-in defaults, then the YAML file, then
// environment variables (optionally seeded from a .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Console ConsoleConfig `yaml:"console"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener and its middleware.
type ServerConfig struct {
	Service        string   `yaml:"service" env:"CHROMELOGGER_SERVICE"`
	Addr           string   `yaml:"addr" env:"CHROMELOGGER_ADDR"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      int      `yaml:"rate_limit" env:"CHROMELOGGER_RATE_LIMIT"`
	RateBurst      int      `yaml:"rate_burst" env:"CHROMELOGGER_RATE_BURST"`

	// comma separated, overrides AllowedOrigins when set
	AllowedOriginsEnv string `yaml:"-" env:"CHROMELOGGER_ALLOWED_ORIGINS"`
}

// ConsoleConfig configures the per-request Chrome Logger console.
type ConsoleConfig struct {
	Enabled        bool `yaml:"enabled" env:"CHROMELOGGER_ENABLED"`
	BacktraceLevel int  `yaml:"backtrace_level" env:"CHROMELOGGER_BACKTRACE_LEVEL"`
	MaxDepth       int  `yaml:"max_depth" env:"CHROMELOGGER_MAX_DEPTH"`
	MaxHeaderBytes int  `yaml:"max_header_bytes" env:"CHROMELOGGER_MAX_HEADER_BYTES"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"CHROMELOGGER_LOG_LEVEL"`
	Format string `yaml:"format" env:"CHROMELOGGER_LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Service:        "chromelogger",
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			RateLimit:      50,
			RateBurst:      100,
		},
		Console: ConsoleConfig{
			Enabled:        true,
			BacktraceLevel: chromelogger.DefaultBacktraceLevel,
			MaxDepth:       chromelogger.DefaultMaxDepth,
			// Chrome rejects response headers larger than ~256KB
			MaxHeaderBytes: 240 * 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads defaults overlaid with the YAML file at path, without
// consulting the environment.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from CHROMELOGGER_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := envdecode.Decode(c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("failed to decode environment: %w", err)
	}
	if raw := strings.TrimSpace(c.Server.AllowedOriginsEnv); raw != "" {
		c.Server.AllowedOrigins = splitAndTrimCSV(raw)
	}
	return nil
}

// Validate checks the configuration for values the server can not run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return errors.New("server.rate_limit and server.rate_burst must not be negative")
	}
	if c.Console.MaxHeaderBytes < 0 {
		return errors.New("console.max_header_bytes must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q must be json or text", c.Logging.Format)
	}
	return nil
}

// EncoderConfig returns the chromelogger configuration for one request.
func (c ConsoleConfig) EncoderConfig() chromelogger.Config {
	return chromelogger.Config{
		BacktraceLevel: c.BacktraceLevel,
		MaxDepth:       c.MaxDepth,
		MaxHeaderBytes: c.MaxHeaderBytes,
	}
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

func splitAndTrimCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
