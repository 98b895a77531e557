// Package config loads service configuration from defaults, an optional
// config file and WORDFREQ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	KeepAliveTimeout time.Duration `mapstructure:"keep_alive_timeout"`
	MaxUploadBytes   int64         `mapstructure:"max_upload_bytes"`
	RateLimit        float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst        int           `mapstructure:"rate_burst"`
	RootMessage      string        `mapstructure:"root_message"`
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Name       string `mapstructure:"name"`
	Level      string `mapstructure:"level"`     // trace, debug, info, warn, error, fatal, panic
	JSON       bool   `mapstructure:"json"`
	Mode       string `mapstructure:"mode"`      // console, file, both
	FilePath   string `mapstructure:"file_path"` // used when mode is file or both
	MaxSize    int    `mapstructure:"max_size"`  // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// Addr returns the listen address for the configured port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", s.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.keep_alive_timeout", 90*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.root_message", "Hello world")

	v.SetDefault("database.url", "")

	v.SetDefault("log.name", "wordfreq")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.mode", "console")
	v.SetDefault("log.file_path", "logs/wordfreq.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
}

var searchPaths = []string{".", "./configs", "/etc/wordfreq"}

// findConfigFile returns the first wordfreq.{yaml,yml,json,toml} in the search paths.
func findConfigFile() string {
	for _, dir := range searchPaths {
		for _, ext := range []string{"yaml", "yml", "json", "toml"} {
			path := filepath.Join(dir, "wordfreq."+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Load reads configuration. An explicit path must exist; without one the
// search paths are tried and a missing file is not an error.
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("WORDFREQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid server.max_upload_bytes: %d", c.Server.MaxUploadBytes)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("invalid server.rate_limit: %v", c.Server.RateLimit)
	}
	return nil
}
