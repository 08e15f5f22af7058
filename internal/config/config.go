package config

import (
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/dshills/caret/internal/layout"
	"github.com/dshills/caret/internal/logging"
	"github.com/dshills/caret/internal/metrics"
)

// Metrics provider kinds.
const (
	MetricsFace = "face"
	MetricsCell = "cell"
)

// Config is the complete application configuration.
type Config struct {
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	Style   StyleConfig   `toml:"style" yaml:"style"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// EditorConfig configures the text engine.
type EditorConfig struct {
	// CaretWidth is the width of the caret rectangle in layout units.
	CaretWidth float64 `toml:"caret_width" yaml:"caret_width"`

	// Overflow decides where clicks past a line's end land:
	// "line-end", "line-start" or "document-start".
	Overflow string `toml:"overflow" yaml:"overflow"`

	// Normalize stores text in Unicode NFC.
	Normalize bool `toml:"normalize" yaml:"normalize"`

	MaxUndo        int  `toml:"max_undo" yaml:"max_undo"`
	WidthCacheSize int  `toml:"width_cache_size" yaml:"width_cache_size"`
	ReadOnly       bool `toml:"read_only" yaml:"read_only"`
}

// StyleConfig configures colours and font.
type StyleConfig struct {
	Foreground string  `toml:"foreground" yaml:"foreground"`
	Background string  `toml:"background" yaml:"background"`
	FontFamily string  `toml:"font_family" yaml:"font_family"`
	FontSize   float64 `toml:"font_size" yaml:"font_size"`
}

// MetricsConfig selects how text is measured.
type MetricsConfig struct {
	// Kind is "face" for font-face metrics or "cell" for terminal cells.
	Kind       string  `toml:"kind" yaml:"kind"`
	CellWidth  float64 `toml:"cell_width" yaml:"cell_width"`
	CellHeight float64 `toml:"cell_height" yaml:"cell_height"`

	// CacheSize bounds the measurement cache. Zero disables it.
	CacheSize int `toml:"cache_size" yaml:"cache_size"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level       string `toml:"level" yaml:"level"`
	Development bool   `toml:"development" yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			CaretWidth:     layout.DefaultCaretWidth,
			Overflow:       layout.OverflowLineEnd.String(),
			MaxUndo:        1000,
			WidthCacheSize: layout.DefaultWidthCacheSize,
		},
		Style: StyleConfig{
			Foreground: "#e6e6e6",
			Background: "#264d8c",
			FontFamily: metrics.DefaultFontFamily,
			FontSize:   metrics.DefaultFontSize,
		},
		Metrics: MetricsConfig{
			Kind:       MetricsCell,
			CellWidth:  1,
			CellHeight: 1,
			CacheSize:  4096,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks every setting and reports all problems at once.
// Each reported error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var err error
	invalid := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Editor.CaretWidth < 0 {
		invalid("editor.caret_width must not be negative, got %v", c.Editor.CaretWidth)
	}
	if _, perr := layout.ParseOverflowPolicy(c.Editor.Overflow); perr != nil {
		invalid("editor.overflow: %v", perr)
	}
	if c.Editor.MaxUndo < 0 {
		invalid("editor.max_undo must not be negative, got %d", c.Editor.MaxUndo)
	}
	if c.Editor.WidthCacheSize < 0 {
		invalid("editor.width_cache_size must not be negative, got %d", c.Editor.WidthCacheSize)
	}
	if _, serr := c.Style.Resolve(); serr != nil {
		invalid("style: %v", serr)
	}
	if c.Style.FontSize < 0 {
		invalid("style.font_size must not be negative, got %v", c.Style.FontSize)
	}
	switch c.Metrics.Kind {
	case MetricsFace, MetricsCell:
	default:
		invalid("metrics.kind must be %q or %q, got %q", MetricsFace, MetricsCell, c.Metrics.Kind)
	}
	if c.Metrics.CellWidth < 0 || c.Metrics.CellHeight < 0 {
		invalid("metrics cell size must not be negative, got %vx%v", c.Metrics.CellWidth, c.Metrics.CellHeight)
	}
	if c.Metrics.CacheSize < 0 {
		invalid("metrics.cache_size must not be negative, got %d", c.Metrics.CacheSize)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		invalid("logging.level %q is not a level", c.Logging.Level)
	}
	return err
}

// Errors splits a Validate result into its individual problems.
func Errors(err error) []error {
	return multierr.Errors(err)
}

// Resolve converts the style settings to a metrics.Style.
func (s StyleConfig) Resolve() (metrics.Style, error) {
	return metrics.ParseStyle(s.Foreground, s.Background, metrics.Font{
		Family: s.FontFamily,
		Size:   s.FontSize,
	})
}

// OverflowPolicy returns the parsed overflow policy.
func (e EditorConfig) OverflowPolicy() (layout.OverflowPolicy, error) {
	return layout.ParseOverflowPolicy(e.Overflow)
}

// Provider builds the configured metrics provider, wrapped in a cache when
// CacheSize is positive.
func (m MetricsConfig) Provider() (metrics.Provider, error) {
	var p metrics.Provider
	switch m.Kind {
	case MetricsFace:
		p = metrics.NewFaceProvider()
	case MetricsCell:
		p = metrics.NewCellProvider(m.CellWidth, m.CellHeight)
	default:
		return nil, fmt.Errorf("%w: unknown metrics kind %q", ErrInvalidConfig, m.Kind)
	}
	if m.CacheSize > 0 {
		p = metrics.NewCache(p, m.CacheSize)
	}
	return p, nil
}

// Logger builds a logger writing to out.
func (l LoggingConfig) Logger(out io.Writer) *logging.Logger {
	return logging.New(logging.Config{
		Level:       logging.ParseLevel(l.Level),
		Output:      out,
		Name:        "caret",
		Development: l.Development,
	})
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
