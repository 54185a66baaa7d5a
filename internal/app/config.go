package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Constants
const (
	DefaultCalendarFile = "calendar.txt"
	BackupSuffix        = ".backup"
	TmpSuffix           = ".tmp"
	FilePermissions     = 0644

	// Environment variables
	EnvConfig    = "MEETCAL_CONFIG"
	EnvFile      = "MEETCAL_FILE"
	EnvBackup    = "MEETCAL_BACKUP"
	EnvLogLevel  = "MEETCAL_LOG_LEVEL"
	EnvLogFormat = "MEETCAL_LOG_FORMAT"
	EnvLogFile   = "MEETCAL_LOG_FILE"
	EnvPrompt    = "MEETCAL_PROMPT"
	EnvYear      = "MEETCAL_EXPORT_YEAR"
	EnvLocation  = "MEETCAL_EXPORT_LOCATION"

	// ICS constants
	ICSProductID = "-//meetcal//Calendar//EN"
)

// ExportConfig controls ICS/CSV/JSON exports
type ExportConfig struct {
	// Year meetings are placed in, the save file carries no year
	Year int `yaml:"year"`
	// Location is an IANA zone name, "Local" or "UTC"
	Location string `yaml:"location"`
	// AlarmMinutes adds a reminder before each ICS event when > 0
	AlarmMinutes int `yaml:"alarm_minutes"`
}

// Config holds the runtime configuration
type Config struct {
	File      string       `yaml:"file"`
	Backup    bool         `yaml:"backup"`
	LogLevel  string       `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"`
	LogFile   string       `yaml:"log_file"`
	Prompt    string       `yaml:"prompt"`
	Export    ExportConfig `yaml:"export"`
}

// DefaultConfig returns the configuration used when nothing else is set
func DefaultConfig() *Config {
	return &Config{
		Backup:    true,
		LogLevel:  "warn",
		LogFormat: "text",
		Prompt:    "> ",
		Export: ExportConfig{
			Year:     time.Now().Year(),
			Location: "Local",
		},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file at path
// (skipped when empty), a .env file in the working directory and MEETCAL_*
// environment variables, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional; existing environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvFile); v != "" {
		c.File = v
	}
	if v := os.Getenv(EnvBackup); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBackup, err)
		}
		c.Backup = b
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
	if v, ok := os.LookupEnv(EnvPrompt); ok {
		c.Prompt = v
	}
	if v := os.Getenv(EnvYear); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvYear, err)
		}
		c.Export.Year = year
	}
	if v := os.Getenv(EnvLocation); v != "" {
		c.Export.Location = v
	}
	return nil
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.Export.Year < 1 || c.Export.Year > 9999 {
		return fmt.Errorf("export.year out of range: %d", c.Export.Year)
	}
	if c.Export.AlarmMinutes < 0 {
		return fmt.Errorf("export.alarm_minutes cannot be negative")
	}
	if _, err := c.Export.TimeLocation(); err != nil {
		return fmt.Errorf("export.location: %w", err)
	}
	return nil
}

// TimeLocation resolves the configured location
func (e ExportConfig) TimeLocation() (*time.Location, error) {
	switch e.Location {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(e.Location)
	}
}
