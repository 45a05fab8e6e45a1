// Package config handles configuration loading and validation for
// folio.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/folio/internal/core/document"
	"github.com/colonyops/folio/internal/core/rendercache"
)

// Config holds the application configuration.
type Config struct {
	LogLevel  string         `yaml:"log_level"`
	LogFile   string         `yaml:"log_file"`
	Render    RenderConfig   `yaml:"render"`
	Text      TextConfig     `yaml:"text"`
	Documents []DocumentRule `yaml:"documents"`
	StateDir  string         `yaml:"-"` // set by caller, not from config file
}

// RenderConfig tunes the render cache and prefetching.
type RenderConfig struct {
	// CacheCapacity bounds the number of cached page renders per
	// document.
	CacheCapacity int `yaml:"cache_capacity"`
	// PrefetchRadius is how many pages on each side of the current one
	// are rendered ahead. Zero disables prefetching.
	PrefetchRadius int `yaml:"prefetch_radius"`
}

// TextConfig tunes text-line reconstruction.
type TextConfig struct {
	// LineThreshold is the maximum vertical distance between glyph
	// centers still considered the same line.
	LineThreshold float64 `yaml:"line_threshold"`
	// LineSmoothing is the moving-average weight applied to the
	// tracked line center as glyphs are appended.
	LineSmoothing float64 `yaml:"line_smoothing"`
}

// DocumentRule overrides initial viewing state for documents whose
// path matches Pattern. Later rules override earlier ones. Patterns
// without a path separator match the file name; patterns with one
// match the full path. Glob syntax supports ** for directories.
type DocumentRule struct {
	Pattern  string   `yaml:"pattern"`
	DarkMode *bool    `yaml:"dark_mode"`
	Scale    *float64 `yaml:"scale"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Render: RenderConfig{
			CacheCapacity:  rendercache.DefaultCapacity,
			PrefetchRadius: 1,
		},
		Text: TextConfig{
			LineThreshold: document.DefaultLineThreshold,
			LineSmoothing: document.DefaultLineSmoothing,
		},
	}
}

// Load reads configuration from the given path and sets the state
// directory. If configPath is empty or doesn't exist, returns defaults
// with the provided stateDir.
func Load(configPath, stateDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.StateDir = stateDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set stateDir since Unmarshal may have cleared it
			cfg.StateDir = stateDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration
// options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.Render.CacheCapacity == 0 {
		c.Render.CacheCapacity = defaults.Render.CacheCapacity
	}
	if c.Text.LineThreshold == 0 {
		c.Text.LineThreshold = defaults.Text.LineThreshold
	}
	if c.Text.LineSmoothing == 0 {
		c.Text.LineSmoothing = defaults.Text.LineSmoothing
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state directory cannot be empty")
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q is not a valid level", c.LogLevel)
	}

	if c.Render.CacheCapacity < 1 {
		return fmt.Errorf("render.cache_capacity must be at least 1")
	}
	if c.Render.PrefetchRadius < 0 {
		return fmt.Errorf("render.prefetch_radius cannot be negative")
	}

	if c.Text.LineThreshold <= 0 || c.Text.LineThreshold >= 1 {
		return fmt.Errorf("text.line_threshold must be in (0, 1)")
	}
	if c.Text.LineSmoothing <= 0 || c.Text.LineSmoothing > 1 {
		return fmt.Errorf("text.line_smoothing must be in (0, 1]")
	}

	for i, rule := range c.Documents {
		if rule.Pattern == "" {
			return fmt.Errorf("documents[%d]: pattern cannot be empty", i)
		}
		if !doublestar.ValidatePattern(rule.Pattern) {
			return fmt.Errorf("documents[%d]: invalid pattern %q", i, rule.Pattern)
		}
		if rule.Scale != nil && (*rule.Scale < document.MinScale || *rule.Scale > document.MaxScale) {
			return fmt.Errorf("documents[%d]: scale must be within [%v, %v]",
				i, document.MinScale, document.MaxScale)
		}
	}

	return nil
}

// InitialState builds the starting state for a document opened for the
// first time, applying every matching document rule in order.
func (c *Config) InitialState(path string) document.PersistedState {
	state := document.DefaultState()
	for _, rule := range c.Documents {
		if !rule.Matches(path) {
			continue
		}
		if rule.DarkMode != nil {
			state.DarkMode = *rule.DarkMode
		}
		if rule.Scale != nil {
			state.Scale = document.ClampScale(*rule.Scale)
		}
	}
	return state
}

// Matches reports whether the rule applies to a document path.
func (r DocumentRule) Matches(path string) bool {
	target := filepath.ToSlash(path)
	if !strings.Contains(r.Pattern, "/") {
		target = filepath.Base(path)
	}

	ok, err := doublestar.Match(r.Pattern, target)
	return err == nil && ok
}
