// Package config provides configuration loading and validation for the
// service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/jobtrack/internal/listing"
	"github.com/jonathan/jobtrack/internal/schemas"
	rootschemas "github.com/jonathan/jobtrack/schemas"
	"golang.org/x/text/language"
)

// Config is the service configuration. Values come from Defaults, then an
// optional JSON file, then the environment.
type Config struct {
	Port      int    `json:"port,omitempty" env:"JOBTRACK_PORT"`
	LogLevel  string `json:"log_level,omitempty" env:"JOBTRACK_LOG_LEVEL"`
	LogFormat string `json:"log_format,omitempty" env:"JOBTRACK_LOG_FORMAT"` // text or json

	// Locale drives company-name collation, e.g. "en" or "sv".
	Locale   string `json:"locale,omitempty" env:"JOBTRACK_LOCALE"`
	PageSize int    `json:"page_size,omitempty" env:"JOBTRACK_PAGE_SIZE"`

	SubmitDelay Duration `json:"submit_delay,omitempty" env:"JOBTRACK_SUBMIT_DELAY"`
	LoginDelay  Duration `json:"login_delay,omitempty" env:"JOBTRACK_LOGIN_DELAY"`

	Seed     bool   `json:"seed,omitempty" env:"JOBTRACK_SEED"`
	SeedFile string `json:"seed_file,omitempty" env:"JOBTRACK_SEED_FILE"` // replaces the built-in fixture
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:        8080,
		LogLevel:    "info",
		LogFormat:   "text",
		Locale:      "en",
		PageSize:    10,
		SubmitDelay: Duration(800 * time.Millisecond),
		LoginDelay:  Duration(time.Second),
		Seed:        true,
	}
}

// Load builds the configuration: defaults, overlaid by the JSON file at path
// (if path is non-empty), overlaid by the environment. The result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		fileCfg, err := LoadFile(path, cfg)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile loads a JSON config file on top of base. Keys absent from the
// file keep base's value.
func LoadFile(path string, base Config) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.PageSize < 0 || c.PageSize > listing.MaxPageSize {
		return fmt.Errorf("config error: 'page_size' must be between 0 and %d, got %d", listing.MaxPageSize, c.PageSize)
	}
	if c.SubmitDelay < 0 {
		return fmt.Errorf("config error: 'submit_delay' must be non-negative")
	}
	if c.LoginDelay < 0 {
		return fmt.Errorf("config error: 'login_delay' must be non-negative")
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be text or json, got %q", c.LogFormat)
	}

	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return fmt.Errorf("config error: invalid 'locale' %q: %w", c.Locale, err)
		}
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: seed file not found: %s", c.SeedFile)
		}
		if err := schemas.ValidateFile(rootschemas.Applications, c.SeedFile); err != nil {
			return fmt.Errorf("config error: invalid seed file: %w", err)
		}
	}

	return nil
}

// LanguageTag returns the parsed locale, falling back to English.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. CLI flags use it to fall back on loaded configuration.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.Locale == "" {
		result.Locale = defaults.Locale
	}
	if result.SeedFile == "" {
		result.SeedFile = defaults.SeedFile
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.PageSize == 0 {
		result.PageSize = defaults.PageSize
	}
	if result.SubmitDelay == 0 {
		result.SubmitDelay = defaults.SubmitDelay
	}
	if result.LoginDelay == 0 {
		result.LoginDelay = defaults.LoginDelay
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	return result
}
