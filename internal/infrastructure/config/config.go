package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/sandbox"
	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Sandbox   SandboxConfig   `yaml:"sandbox" toml:"sandbox"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" yaml:"port" toml:"port"`
	Host string `envconfig:"HOST" yaml:"host" toml:"host"`
}

// SandboxConfig holds the allowed directories and traversal limits.
type SandboxConfig struct {
	AllowedDirs      []string `envconfig:"ALLOWED_DIRS" yaml:"allowed_dirs" toml:"allowed_dirs"`
	SearchMaxResults int      `envconfig:"SEARCH_MAX_RESULTS" yaml:"search_max_results" toml:"search_max_results"`
	TreeDefaultDepth int      `envconfig:"TREE_DEFAULT_DEPTH" yaml:"tree_default_depth" toml:"tree_default_depth"`
	TreeMaxDepth     int      `envconfig:"TREE_MAX_DEPTH" yaml:"tree_max_depth" toml:"tree_max_depth"`
	MaxLineLength    int      `envconfig:"SEARCH_MAX_LINE_LENGTH" yaml:"max_line_length" toml:"max_line_length"`
	BinarySniffBytes int      `envconfig:"BINARY_SNIFF_BYTES" yaml:"binary_sniff_bytes" toml:"binary_sniff_bytes"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
	// Global shares one bucket across all clients instead of one per IP.
	Global            bool `envconfig:"RATE_LIMIT_GLOBAL" yaml:"global" toml:"global"`
}

// FileEnv names the environment variable pointing at an optional config file.
const FileEnv = "FS_CONFIG_FILE"

// Load builds configuration from defaults, then the file named by
// FS_CONFIG_FILE if set, then environment variables.
func Load() (*Config, error) {
	return LoadWithFile(os.Getenv(FileEnv))
}

// LoadWithFile is Load with an explicit config file. An empty path skips
// the file layer.
func LoadWithFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}

	// Fields carry no envconfig defaults, so unset variables leave the
	// file and default values in place.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
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
	limits := sandbox.DefaultLimits()
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "127.0.0.1",
		},
		Sandbox: SandboxConfig{
			SearchMaxResults: limits.DefaultMaxResults,
			TreeDefaultDepth: limits.DefaultTreeDepth,
			TreeMaxDepth:     limits.MaxTreeDepth,
			MaxLineLength:    limits.MaxLineLength,
			BinarySniffBytes: limits.BinarySniffBytes,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate rejects limits the sandbox cannot honor.
func (c *Config) Validate() error {
	s := c.Sandbox
	switch {
	case s.SearchMaxResults < 1:
		return fmt.Errorf("search_max_results must be positive, got %d", s.SearchMaxResults)
	case s.TreeMaxDepth < 1:
		return fmt.Errorf("tree_max_depth must be positive, got %d", s.TreeMaxDepth)
	case s.TreeDefaultDepth < 1 || s.TreeDefaultDepth > s.TreeMaxDepth:
		return fmt.Errorf("tree_default_depth must be in [1, %d], got %d", s.TreeMaxDepth, s.TreeDefaultDepth)
	case s.MaxLineLength < 1:
		return fmt.Errorf("max_line_length must be positive, got %d", s.MaxLineLength)
	case s.BinarySniffBytes < 1:
		return fmt.Errorf("binary_sniff_bytes must be positive, got %d", s.BinarySniffBytes)
	}
	return nil
}

// Limits converts the sandbox section into core traversal limits.
func (c *Config) Limits() sandbox.Limits {
	return sandbox.Limits{
		DefaultTreeDepth:  c.Sandbox.TreeDefaultDepth,
		MaxTreeDepth:      c.Sandbox.TreeMaxDepth,
		DefaultMaxResults: c.Sandbox.SearchMaxResults,
		MaxLineLength:     c.Sandbox.MaxLineLength,
		BinarySniffBytes:  c.Sandbox.BinarySniffBytes,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// merge decodes the file at path over c. The format follows the extension.
func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config file format: %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
