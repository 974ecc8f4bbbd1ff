package models

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds configuration for the scanner and linter
type Config struct {
	// Paths to scan for dependency manifests
	Paths []string

	// Output settings
	OutputFormat string // "terminal", "json", "sarif"
	OutputFile   string // Optional output file path

	// Behavior settings
	FailOnError   bool     // Exit with code 1 if error findings exist
	Strict        bool     // Escalate warnings to errors
	DisabledRules []string // Rule IDs to suppress

	// Cache settings
	CacheTTL time.Duration
	NoCache  bool

	// Registry settings
	IndexURL string // Base URL of the PyPI-compatible index
	Timeout  time.Duration

	// Logging
	LogLevel string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Paths:        []string{"."},
		OutputFormat: "terminal",
		FailOnError:  true,
		CacheTTL:     24 * time.Hour,
		IndexURL:     "https://pypi.org",
		Timeout:      30 * time.Second,
		LogLevel:     "info",
	}
}

// RuleDisabled reports whether the given rule ID is suppressed
func (c *Config) RuleDisabled(id string) bool {
	for _, r := range c.DisabledRules {
		if r == id {
			return true
		}
	}
	return false
}

// fileConfig is the on-disk shape of .reqlint.toml
type fileConfig struct {
	Format        string   `toml:"format"`
	Strict        bool     `toml:"strict"`
	Disable       []string `toml:"disable"`
	NoCache       bool     `toml:"no_cache"`
	CacheTTLHours int      `toml:"cache_ttl_hours"`
	IndexURL      string   `toml:"index_url"`
	TimeoutSecs   int      `toml:"timeout_seconds"`
	LogLevel      string   `toml:"log_level"`
}

// DefaultConfigFile is the config filename looked up in the working directory
const DefaultConfigFile = ".reqlint.toml"

// LoadFile overlays settings from a TOML config file onto c.
// A missing file at the default path is not an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultConfigFile {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if fc.Format != "" {
		c.OutputFormat = fc.Format
	}
	if fc.Strict {
		c.Strict = true
	}
	if len(fc.Disable) > 0 {
		c.DisabledRules = append(c.DisabledRules, fc.Disable...)
	}
	if fc.NoCache {
		c.NoCache = true
	}
	if fc.CacheTTLHours > 0 {
		c.CacheTTL = time.Duration(fc.CacheTTLHours) * time.Hour
	}
	if fc.IndexURL != "" {
		c.IndexURL = fc.IndexURL
	}
	if fc.TimeoutSecs > 0 {
		c.Timeout = time.Duration(fc.TimeoutSecs) * time.Second
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}

	return nil
}
