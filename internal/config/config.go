// Package config loads socialnet configuration.
//
// Values come from the built-in defaults, then an optional YAML file, then
// environment overrides, and are validated before use.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Benny93/socialnet-go/internal/graph"
)

// Environment variables that override file values.
const (
	EnvLogLevel    = "SOCIALNET_LOG_LEVEL"
	EnvEnvironment = "SOCIALNET_ENVIRONMENT"
)

// Config holds all application configuration.
type Config struct {
	// Capacity limits of the social graph.
	MaxUsers       int `yaml:"max_users" validate:"min=1,max=1000000"`
	MaxConnections int `yaml:"max_connections" validate:"min=1,max=10000"`
	MaxNameLength  int `yaml:"max_name_length" validate:"min=1,max=1024"`

	// TopN is how many users the influence report shows.
	TopN int `yaml:"top_n" validate:"min=1"`

	// Logging
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Environment string `yaml:"environment" validate:"oneof=development production"`
}

// Default returns the built-in configuration.
func Default() *Config {
	limits := graph.DefaultLimits()
	return &Config{
		MaxUsers:       limits.MaxUsers,
		MaxConnections: limits.MaxConnections,
		MaxNameLength:  limits.MaxNameLength,
		TopN:           10,
		LogLevel:       "warn",
		Environment:    "development",
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvEnvironment); v != "" {
		cfg.Environment = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Limits returns the graph limits described by the configuration.
func (c *Config) Limits() graph.Limits {
	return graph.Limits{
		MaxUsers:       c.MaxUsers,
		MaxConnections: c.MaxConnections,
		MaxNameLength:  c.MaxNameLength,
	}
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(out), nil
}

// NewLogger builds the application logger. Production uses JSON output;
// anything else the human-readable development encoder. Logs go to stderr.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	var zcfg zap.Config
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
