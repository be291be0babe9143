package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	domain "journeygrid/domain/journey"
	"journeygrid/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Source     SourceConfig
	Server     ServerConfig
	Highlights domain.HighlightPolicy
}

// SourceConfig says where the journey table comes from
type SourceConfig struct {
	URL      string        // published CSV link (Google Sheets, SharePoint/OneDrive)
	GID      string        // optional sheet tab id for Google Sheets
	File     string        // local .csv or .xlsx path, used when URL is empty
	Sheet    string        // worksheet name for .xlsx files
	Timeout  time.Duration // fetch timeout
	MaxBytes int64         // upper bound on the fetched body
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

const (
	DefaultMaxBytes = 10 << 20
	DefaultSheet    = "Sheet1"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Source:     loadSourceConfig(),
		Server:     loadServerConfig(),
		Highlights: domain.DefaultHighlightPolicy(),
	}

	if path := os.Getenv("JOURNEY_HIGHLIGHTS_FILE"); path != "" {
		policy, err := LoadHighlightPolicy(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load highlight policy")
		}
		config.Highlights = policy
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadSource reads the source settings alone, without validation. Command line tools
// overlay their flags on top of it.
func LoadSource() SourceConfig {
	return loadSourceConfig()
}

func loadSourceConfig() SourceConfig {
	return SourceConfig{
		URL:      getEnvOrDefault("JOURNEY_CSV_URL", ""),
		GID:      getEnvOrDefault("JOURNEY_CSV_GID", ""),
		File:     getEnvOrDefault("JOURNEY_SOURCE_FILE", ""),
		Sheet:    getEnvOrDefault("JOURNEY_SHEET", DefaultSheet),
		Timeout:  getEnvDurationOrDefault("JOURNEY_FETCH_TIMEOUT", 15*time.Second),
		MaxBytes: getEnvInt64OrDefault("JOURNEY_MAX_BYTES", DefaultMaxBytes),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

// LoadHighlightPolicy reads a YAML highlight policy. Keys left out of the file keep
// their defaults.
func LoadHighlightPolicy(path string) (domain.HighlightPolicy, error) {
	policy := domain.DefaultHighlightPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return policy, errors.Wrapf(err, "read %s", path)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "parse %s", path))
	}
	return policy, nil
}

func validateConfig(config *Config) error {
	if config.Source.URL == "" && config.Source.File == "" {
		return errors.ConfigInvalid("one of JOURNEY_CSV_URL or JOURNEY_SOURCE_FILE is required")
	}
	if config.Source.URL != "" && !strings.HasPrefix(config.Source.URL, "http://") && !strings.HasPrefix(config.Source.URL, "https://") {
		return errors.ConfigInvalid("JOURNEY_CSV_URL must be an http(s) URL")
	}
	if config.Source.Timeout <= 0 {
		return errors.ConfigInvalid("JOURNEY_FETCH_TIMEOUT must be positive")
	}
	if config.Source.MaxBytes <= 0 {
		return errors.ConfigInvalid("JOURNEY_MAX_BYTES must be positive")
	}
	if config.Highlights.MaxExtra < 0 {
		return errors.ConfigInvalid("highlight max_extra cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
