// Package config provides configuration management for wikimark.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/wikimark/pkg/markup"
)

// Formats lists the accepted output formats.
var Formats = []string{markup.FormatHTML, markup.FormatText, "markdown"}

// Config holds the wikimark configuration.
type Config struct {
	Application string `yaml:"application,omitempty"`
	Format      string `yaml:"format,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	BaseDomain  string `yaml:"base_domain,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
	PagesDir    string `yaml:"pages_dir,omitempty"`
	PagesURL    string `yaml:"pages_url,omitempty"`
	PagesToken  string `yaml:"pages_token,omitempty"`
	CacheDir    string `yaml:"cache_dir,omitempty"`

	Smileys   []markup.Smiley   `yaml:"smileys,omitempty"`
	InterWiki map[string]string `yaml:"interwiki,omitempty"`
	Shortcuts map[string]string `yaml:"shortcuts,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Application: "wiki",
		Format:      markup.FormatHTML,
		LogLevel:    "warn",
	}
}

// Validate checks that all set fields hold usable values.
func (c *Config) Validate() error {
	if c.Format != "" && !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("format must be one of %s", strings.Join(Formats, ", "))
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level %q", c.LogLevel)
		}
	}
	for name, raw := range map[string]string{"base_url": c.BaseURL, "pages_url": c.PagesURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http or https URL", name)
		}
	}
	if c.PagesDir != "" && c.PagesURL != "" {
		return errors.New("pages_dir and pages_url are mutually exclusive")
	}
	for i, s := range c.Smileys {
		if s.Code == "" || s.Glyph == "" {
			return fmt.Errorf("smiley %d needs a code and a glyph", i+1)
		}
	}
	return nil
}

// NormalizeURL trims the trailing slash from the base URL and derives the
// base domain from it when none is set.
func (c *Config) NormalizeURL() {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.BaseDomain != "" || c.BaseURL == "" {
		return
	}
	if u, err := url.Parse(c.BaseURL); err == nil {
		c.BaseDomain = u.Hostname()
	}
}

// Links returns the link resolver described by the configuration. exists
// may be nil.
func (c *Config) Links(exists func(string) bool) markup.StaticLinks {
	return markup.StaticLinks{
		BaseURL:      c.BaseURL,
		Domain:       c.BaseDomain,
		Shortcuts:    c.Shortcuts,
		InterWikiMap: c.InterWiki,
		Exists:       exists,
	}
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() {
	for env, field := range map[string]*string{
		"WIKIMARK_APPLICATION": &c.Application,
		"WIKIMARK_FORMAT":      &c.Format,
		"WIKIMARK_BASE_URL":    &c.BaseURL,
		"WIKIMARK_BASE_DOMAIN": &c.BaseDomain,
		"WIKIMARK_LOG_LEVEL":   &c.LogLevel,
		"WIKIMARK_PAGES_DIR":   &c.PagesDir,
		"WIKIMARK_PAGES_URL":   &c.PagesURL,
		"WIKIMARK_CACHE_DIR":   &c.CacheDir,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	if token := getEnvWithFallback("WIKIMARK_PAGES_TOKEN", "WIKI_TOKEN"); token != "" {
		c.PagesToken = token
	}
}

// getEnvWithFallback returns the value of the primary env var, or the fallback if primary is empty.
func getEnvWithFallback(primary, fallback string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return os.Getenv(fallback)
}

// ConfigPath returns the configuration file path.
// Can be overridden for testing.
var ConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "wikimark", "config.yml")
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return ConfigPath()
}

// DefaultCacheDir returns the directory compiled pages are cached in.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "wikimark")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a page server token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment
// variables. A missing file yields the defaults; a broken one is an error.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg.LoadFromEnv()
	cfg.NormalizeURL()
	return cfg, nil
}
