// Package config loads the TOML configuration shared by the client commands and
// the local content API stub.
package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/samber/lo"
)

//go:embed default_config.toml
var defaultConfig []byte

const appName = "inkfeed"

// SourceType names how a stub source is read
type SourceType string

const (
	SourceRSS  SourceType = "rss"
	SourceJSON SourceType = "json"
)

// APIConfig points the client at the content API
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
}

// FeedConfig tunes how posts are ranked and rendered
type FeedConfig struct {
	InternalSources []string `toml:"internal_sources"`
	TopTags         int      `toml:"top_tags"`
	WordsPerMinute  int      `toml:"words_per_minute"`
	SnippetLength   int      `toml:"snippet_length"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
	File   string `toml:"file"`
}

// Source is a feed or fixture the stub imports posts from
type Source struct {
	Name    string     `toml:"name"`
	Type    SourceType `toml:"type"`
	URL     string     `toml:"url,omitempty"`
	Path    string     `toml:"path,omitempty"`
	Label   string     `toml:"label,omitempty"` // source label stored on posts, defaults to Name
	Tags    []string   `toml:"tags,omitempty"`
	Enabled bool       `toml:"enabled"`
}

// SourceLabel is the value posts from this source carry in their source field
func (s Source) SourceLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

type StubConfig struct {
	Database     string   `toml:"database"`
	Listen       string   `toml:"listen"`
	AllowOrigins string   `toml:"allow_origins"`
	Retention    string   `toml:"retention"`
	FailStatus   int      `toml:"fail_status"`
	Sources      []Source `toml:"sources"`
}

// Config represents the top-level configuration
type Config struct {
	API  APIConfig  `toml:"api"`
	Feed FeedConfig `toml:"feed"`
	Log  LogConfig  `toml:"log"`
	Stub StubConfig `toml:"stub"`
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// DefaultDatabasePath is where the stub keeps its SQLite database
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, appName, "stub.db")
}

// DatabasePath returns the configured stub database or the default location
func (c *Config) DatabasePath() string {
	if c.Stub.Database != "" {
		return c.Stub.Database
	}
	return DefaultDatabasePath()
}

// TimeoutDuration returns the API request timeout, 15s when unset or invalid
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// RetentionDuration parses the stub retention. Besides Go durations it accepts
// a day count such as "30d". Zero means keep everything.
func (c *Config) RetentionDuration() time.Duration {
	d, err := parseRetention(c.Stub.Retention)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}

func parseRetention(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days >= 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid retention %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid retention %q: negative", s)
	}
	return d, nil
}

// EnabledSources returns the stub sources switched on in the configuration
func (c *Config) EnabledSources() []Source {
	return lo.Filter(c.Stub.Sources, func(s Source, _ int) bool {
		return s.Enabled
	})
}

// Defaults returns the embedded default configuration
func Defaults() (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(defaultConfig), &cfg); err != nil {
		return nil, fmt.Errorf("error parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the configuration at path on top of the embedded defaults. An
// empty path uses DefaultConfigPath, which is allowed to be missing.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	optional := path == ""
	if optional {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := overlay(cfg, string(data)); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay decodes data over cfg. Lists defined in data replace the defaults
// instead of being merged element by element.
func overlay(cfg *Config, data string) error {
	var probe Config
	md, err := toml.Decode(data, &probe)
	if err != nil {
		return err
	}
	if md.IsDefined("stub", "sources") {
		cfg.Stub.Sources = nil
	}
	if md.IsDefined("feed", "internal_sources") {
		cfg.Feed.InternalSources = nil
	}
	_, err = toml.Decode(data, cfg)
	return err
}

// WriteDefaults writes the embedded configuration to path, creating parent
// directories. An existing file is left untouched.
func WriteDefaults(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, defaultConfig, 0o644)
}

func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.API.Timeout != "" {
		if _, err := time.ParseDuration(cfg.API.Timeout); err != nil {
			return fmt.Errorf("api.timeout: %w", err)
		}
	}

	if cfg.Feed.TopTags < 0 {
		return fmt.Errorf("feed.top_tags must not be negative")
	}
	if cfg.Feed.WordsPerMinute < 0 || cfg.Feed.SnippetLength < 0 {
		return fmt.Errorf("feed.words_per_minute and feed.snippet_length must not be negative")
	}

	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q (valid: text, json)", cfg.Log.Format)
	}

	if _, err := parseRetention(cfg.Stub.Retention); err != nil {
		return fmt.Errorf("stub.retention: %w", err)
	}
	if s := cfg.Stub.FailStatus; s != 0 && (s < 400 || s > 599) {
		return fmt.Errorf("stub.fail_status must be 0 or an HTTP error status, got %d", s)
	}

	for i, s := range cfg.Stub.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		switch s.Type {
		case SourceRSS:
			su, err := url.Parse(s.URL)
			if err != nil {
				return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
			}
			if su.Scheme != "http" && su.Scheme != "https" {
				return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, su.Scheme)
			}
		case SourceJSON:
			if s.Path == "" {
				return fmt.Errorf("source %q: path is required", s.Name)
			}
		default:
			return fmt.Errorf("source %q: unknown type %q (valid: rss, json)", s.Name, s.Type)
		}
	}
	return nil
}
