package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration. Every field has a working
// default, so a missing or partial file is never an error.
type Config struct {
	// Zoom bounds and the multiplicative step applied per zoom keypress.
	MinZoom  float64 `yaml:"min_zoom"`
	MaxZoom  float64 `yaml:"max_zoom"`
	ZoomStep float64 `yaml:"zoom_step"`

	// Spacing constants for the collision layout. Unified is wider
	// because unified labels carry a goal subtitle.
	UnifiedSpacing float64 `yaml:"unified_spacing"`
	GroupedSpacing float64 `yaml:"grouped_spacing"`

	// TickExclusion is the half-width of the reserved zone around each
	// date-axis tick label.
	TickExclusion float64 `yaml:"tick_exclusion"`

	// Margin is the outer horizontal margin of the unified view;
	// LabelColWidth is the frozen label column of the grouped views.
	Margin        int `yaml:"margin"`
	LabelColWidth int `yaml:"label_col_width"`

	// Palette assigns colors to grouping keys, in order of first use.
	Palette []string `yaml:"palette"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MinZoom:        0.1,
		MaxZoom:        10,
		ZoomStep:       1.25,
		UnifiedSpacing: 16,
		GroupedSpacing: 8,
		TickExclusion:  5,
		Margin:         4,
		LabelColWidth:  18,
		Palette: []string{
			"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12",
			"#2ECC71", "#E74C3C", "#9B59B6", "#3498DB",
		},
	}
}

// Normalize fills zero values with defaults so older or hand-edited
// configs keep working.
func (c *Config) Normalize() {
	d := Default()
	if c.MinZoom <= 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom <= c.MinZoom {
		c.MaxZoom = d.MaxZoom
	}
	if c.ZoomStep <= 1 {
		c.ZoomStep = d.ZoomStep
	}
	if c.UnifiedSpacing <= 0 {
		c.UnifiedSpacing = d.UnifiedSpacing
	}
	if c.GroupedSpacing <= 0 {
		c.GroupedSpacing = d.GroupedSpacing
	}
	if c.TickExclusion < 0 {
		c.TickExclusion = d.TickExclusion
	}
	if c.Margin <= 0 {
		c.Margin = d.Margin
	}
	if c.LabelColWidth <= 0 {
		c.LabelColWidth = d.LabelColWidth
	}
	if len(c.Palette) == 0 {
		c.Palette = d.Palette
	}
}

// DefaultPath returns ~/.config/tidelines/config.yaml.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "tidelines", "config.yaml"), nil
}

// Load reads the YAML config at path. A missing file yields the defaults
// with no error; a malformed file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the config as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ColorFor deterministically assigns a palette color to a grouping key
// based on its position in the given ordered key list.
func (c *Config) ColorFor(key string, ordered []string) string {
	for i, k := range ordered {
		if k == key {
			return c.Palette[i%len(c.Palette)]
		}
	}
	return c.Palette[0]
}
