// ============================================================================
// kurswerk - Course Catalog Prerequisite Extractor
// ============================================================================
//
// Package:     config
// Description: Application configuration from TOML or YAML files
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	kwerror "github.com/msto63/kurswerk/pkg/core/error"
	"github.com/msto63/kurswerk/pkg/core/version"
)

// DefaultCatalogURL is the catalog the original scraper targeted
const DefaultCatalogURL = "https://ucsc.smartcatalogiq.com/en/current/general-catalog/courses/cse-computer-science-and-engineering/"

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Catalog  CatalogConfig  `toml:"catalog" yaml:"catalog"`
	Output   OutputConfig   `toml:"output" yaml:"output"`
	Pipeline PipelineConfig `toml:"pipeline" yaml:"pipeline"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// CatalogConfig holds catalog access settings
type CatalogConfig struct {
	URL       string   `toml:"url" yaml:"url"`
	Timeout   Duration `toml:"timeout" yaml:"timeout"`
	UserAgent string   `toml:"user_agent" yaml:"user_agent"`
	// Course number range to keep; ScopeMax 0 means no upper bound
	ScopeMin int `toml:"scope_min" yaml:"scope_min"`
	ScopeMax int `toml:"scope_max" yaml:"scope_max"`
}

// OutputConfig holds persistence settings
type OutputConfig struct {
	Format string `toml:"format" yaml:"format"` // "json" or "sqlite"
	Path   string `toml:"path" yaml:"path"`
}

// PipelineConfig holds pipeline settings
type PipelineConfig struct {
	Workers int `toml:"workers" yaml:"workers"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration string from YAML
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kwerror.Newf("config file not found: %s", path).
				WithCode(kwerror.CodeConfigError)
		}
		return nil, kwerror.Wrap(err, "failed to read config").WithCode(kwerror.CodeConfigError)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, kwerror.Wrap(err, "failed to parse config").WithCode(kwerror.CodeInvalidConfig)
		}
	default:
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, kwerror.Wrap(err, "failed to parse config").WithCode(kwerror.CodeInvalidConfig)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path if given, otherwise the first default location
// that exists, otherwise built-in defaults
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	if env := os.Getenv("KURSWERK_CONFIG"); env != "" {
		return Load(env)
	}

	for _, p := range []string{"./configs/kurswerk.toml", "./kurswerk.toml", "./kurswerk.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}

	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.Name == "" {
		c.General.Name = "kurswerk"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	if c.Catalog.URL == "" {
		c.Catalog.URL = DefaultCatalogURL
	}
	if c.Catalog.Timeout.Duration == 0 {
		c.Catalog.Timeout.Duration = 30 * time.Second
	}
	if c.Catalog.UserAgent == "" {
		c.Catalog.UserAgent = version.UserAgent()
	}

	if c.Output.Format == "" {
		c.Output.Format = "json"
	}
	if c.Output.Path == "" {
		if c.Output.Format == "sqlite" {
			c.Output.Path = "./data/courses.db"
		} else {
			c.Output.Path = "./courses.json"
		}
	}

	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = 4
	}
}

// applyEnv overrides values from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv("KURSWERK_CATALOG_URL"); v != "" {
		c.Catalog.URL = v
	}
	if v := os.Getenv("KURSWERK_OUTPUT"); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv("KURSWERK_LOG_LEVEL"); v != "" {
		c.General.LogLevel = v
	}
	if v := os.Getenv("KURSWERK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pipeline.Workers = n
		}
	}
	c.Output.Path = os.ExpandEnv(c.Output.Path)
}

// Validate checks the configuration for values the pipeline cannot use
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return kwerror.Newf(format, args...).WithCode(kwerror.CodeInvalidConfig)
	}

	switch c.Output.Format {
	case "json", "sqlite":
	default:
		return invalid("output.format must be json or sqlite, got %q", c.Output.Format)
	}
	if c.Pipeline.Workers < 1 {
		return invalid("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Catalog.ScopeMin < 0 || c.Catalog.ScopeMax < 0 {
		return invalid("catalog scope must not be negative")
	}
	if c.Catalog.ScopeMax != 0 && c.Catalog.ScopeMax < c.Catalog.ScopeMin {
		return invalid("catalog.scope_max %d below scope_min %d", c.Catalog.ScopeMax, c.Catalog.ScopeMin)
	}
	if c.Catalog.Timeout.Duration < 0 {
		return invalid("catalog.timeout must not be negative")
	}
	return nil
}

// String returns a short summary for debug output
func (c *Config) String() string {
	return fmt.Sprintf("catalog=%s output=%s:%s workers=%d",
		c.Catalog.URL, c.Output.Format, c.Output.Path, c.Pipeline.Workers)
}
