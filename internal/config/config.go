// Package config loads and validates the blogforge YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Site   SiteConfig   `yaml:"site"`
	Source SourceConfig `yaml:"source"`
	Output OutputConfig `yaml:"output"`
	Build  BuildConfig  `yaml:"build"`
	Serve  ServeConfig  `yaml:"serve"`
}

// SiteConfig carries site-wide metadata exposed to layouts and feeds.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// SourceConfig locates the content tree and its templates.
type SourceConfig struct {
	Directory     string `yaml:"directory"`                // Markdown content root
	LayoutsDir    string `yaml:"layouts_dir,omitempty"`    // named layout templates
	IncludesDir   string `yaml:"includes_dir,omitempty"`   // reusable include fragments
	StaticDir     string `yaml:"static_dir,omitempty"`     // copied verbatim into output
	IncludeDrafts bool   `yaml:"include_drafts,omitempty"` // render documents marked draft
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// BuildConfig tunes pipeline behavior.
type BuildConfig struct {
	FailFast      *bool  `yaml:"fail_fast,omitempty"`      // abort on first document failure (default true)
	DefaultLayout string `yaml:"default_layout,omitempty"` // layout for documents that omit one
	ListLayout    string `yaml:"list_layout,omitempty"`    // layout for category listings and the index
	CheckLinks    bool   `yaml:"check_links,omitempty"`    // verify internal links after assembly
	HistoryPath   string `yaml:"history_path,omitempty"`   // SQLite build log ("" disables, ":memory:" allowed)
	FeedSize      int    `yaml:"feed_size,omitempty"`      // max items in feed.xml
}

// ServeConfig configures the local preview server.
type ServeConfig struct {
	Port            int      `yaml:"port,omitempty"`
	RebuildInterval Duration `yaml:"rebuild_interval,omitempty"` // periodic rebuild, 0 disables
	Metrics         bool     `yaml:"metrics,omitempty"`
	MetricsPath     string   `yaml:"metrics_path,omitempty"`
}

// Duration wraps time.Duration so YAML configs can say "5m" or "90s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// FailFastEnabled resolves the tri-state fail_fast flag (default true).
func (b BuildConfig) FailFastEnabled() bool {
	if b.FailFast == nil {
		return true
	}
	return *b.FailFast
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; missing files are not an error.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- user-provided config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "My Blog"
	}
	if c.Source.Directory == "" {
		c.Source.Directory = "content"
	}
	if c.Source.LayoutsDir == "" {
		c.Source.LayoutsDir = "layouts"
	}
	if c.Source.IncludesDir == "" {
		c.Source.IncludesDir = "includes"
	}
	if c.Source.StaticDir == "" {
		c.Source.StaticDir = "static"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "public"
	}
	if c.Build.DefaultLayout == "" {
		c.Build.DefaultLayout = "post"
	}
	if c.Build.ListLayout == "" {
		c.Build.ListLayout = "list"
	}
	if c.Build.FeedSize <= 0 {
		c.Build.FeedSize = 20
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = 1313
	}
	if c.Serve.MetricsPath == "" {
		c.Serve.MetricsPath = "/metrics"
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Source.Directory == c.Output.Directory {
		return fmt.Errorf("source and output directory must differ: %s", c.Source.Directory)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve port: %d", c.Serve.Port)
	}
	if c.Serve.RebuildInterval < 0 {
		return fmt.Errorf("rebuild interval must not be negative: %s", c.Serve.RebuildInterval)
	}
	return nil
}
