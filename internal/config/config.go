// Package config provides configuration management for tallylog.
//
// This package handles loading configuration from multiple sources:
// - Configuration files (YAML, JSON, TOML)
// - Environment variables
// - Command line arguments
// - Default values
//
// Configuration is loaded in order of precedence (highest to lowest):
// 1. Command line arguments
// 2. Environment variables
// 3. Configuration file
// 4. Default values
//
// The three positional CLI arguments (log path, worker count, sleep
// interval) always win over file and environment values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tallylog/tallylog/internal/errors"
)

// Config represents the complete tallylog configuration
type Config struct {
	Writer  WriterConfig  `mapstructure:"writer" yaml:"writer"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// WriterConfig contains the shared-sink writer configuration
type WriterConfig struct {
	// Path is the log file opened in append mode and shared by all workers.
	Path string `mapstructure:"path" yaml:"path"`
	// Workers is the number of concurrent writer workers.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// Interval is the base sleep between consecutive writes of one worker.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	// PollInterval is how often the supervisor re-checks the run flag
	// while waiting for shutdown. Bounds shutdown latency.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// LoggingConfig contains diagnostic logging configuration. Diagnostics go
// to stderr and are entirely separate from the shared log file.
type LoggingConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Format  string `mapstructure:"format" yaml:"format"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Writer: WriterConfig{
			Path:         "",
			Workers:      1,
			Interval:     1000 * time.Millisecond,
			PollInterval: 1 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Verbose: false,
		},
	}
}

// LoadConfig loads configuration from various sources
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure environment variable handling
	v.SetEnvPrefix("TALLYLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Search for config file in common locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.tallylog")
		v.AddConfigPath("/etc/tallylog")
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If a specific config file was provided and not found, that's an error
			if configFile != "" {
				return nil, fmt.Errorf("config file not found: %s", configFile)
			}
			// Otherwise, config file not found is okay, we'll use defaults
		} else {
			// Other errors are always reported
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	// Writer defaults
	v.SetDefault("writer.path", defaults.Writer.Path)
	v.SetDefault("writer.workers", defaults.Writer.Workers)
	v.SetDefault("writer.interval", defaults.Writer.Interval)
	v.SetDefault("writer.poll_interval", defaults.Writer.PollInterval)

	// Logging defaults
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.verbose", defaults.Logging.Verbose)
}

// Validate checks the configuration before the supervisor starts.
// Validation errors are fatal: no partial startup.
func (c *Config) Validate() error {
	if c.Writer.Path == "" {
		return errors.ErrMissingLogPath
	}

	if c.Writer.Workers <= 0 {
		return errors.ConfigError("INVALID_WORKER_COUNT",
			fmt.Sprintf("Worker count must be a positive integer, got %d", c.Writer.Workers), nil)
	}

	if c.Writer.Interval < 0 {
		return errors.ConfigError("INVALID_INTERVAL",
			fmt.Sprintf("Sleep interval must be non-negative, got %v", c.Writer.Interval), nil)
	}

	if c.Writer.PollInterval <= 0 {
		return errors.ConfigError("INVALID_POLL_INTERVAL",
			fmt.Sprintf("Poll interval must be positive, got %v", c.Writer.PollInterval), nil)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return errors.ConfigError("INVALID_LOG_LEVEL",
			fmt.Sprintf("Logging level must be one of: debug, info, warn, error, got %s", c.Logging.Level), nil)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return errors.ConfigError("INVALID_LOG_FORMAT",
			fmt.Sprintf("Logging format must be 'text' or 'json', got %s", c.Logging.Format), nil)
	}

	return nil
}

// GetEnvVarName returns the environment variable name for a config key
func GetEnvVarName(key string) string {
	return "TALLYLOG_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
