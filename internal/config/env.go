package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "CARET_"

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envSetting maps one environment variable onto a config field.
type envSetting struct {
	path string
	set  func(c *Config, v string) error
}

func envString(field func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func envFloat(field func(c *Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func envInt(field func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func envBool(field func(c *Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// envMapping returns the environment variable mappings, keyed by the
// variable name without prefix.
func envMapping() map[string]envSetting {
	return map[string]envSetting{
		"CARET_WIDTH":      {"editor.caret_width", envFloat(func(c *Config) *float64 { return &c.Editor.CaretWidth })},
		"OVERFLOW":         {"editor.overflow", envString(func(c *Config) *string { return &c.Editor.Overflow })},
		"NORMALIZE":        {"editor.normalize", envBool(func(c *Config) *bool { return &c.Editor.Normalize })},
		"MAX_UNDO":         {"editor.max_undo", envInt(func(c *Config) *int { return &c.Editor.MaxUndo })},
		"WIDTH_CACHE_SIZE": {"editor.width_cache_size", envInt(func(c *Config) *int { return &c.Editor.WidthCacheSize })},
		"READ_ONLY":        {"editor.read_only", envBool(func(c *Config) *bool { return &c.Editor.ReadOnly })},
		"FOREGROUND":       {"style.foreground", envString(func(c *Config) *string { return &c.Style.Foreground })},
		"BACKGROUND":       {"style.background", envString(func(c *Config) *string { return &c.Style.Background })},
		"FONT_FAMILY":      {"style.font_family", envString(func(c *Config) *string { return &c.Style.FontFamily })},
		"FONT_SIZE":        {"style.font_size", envFloat(func(c *Config) *float64 { return &c.Style.FontSize })},
		"METRICS":          {"metrics.kind", envString(func(c *Config) *string { return &c.Metrics.Kind })},
		"CELL_WIDTH":       {"metrics.cell_width", envFloat(func(c *Config) *float64 { return &c.Metrics.CellWidth })},
		"CELL_HEIGHT":      {"metrics.cell_height", envFloat(func(c *Config) *float64 { return &c.Metrics.CellHeight })},
		"METRICS_CACHE":    {"metrics.cache_size", envInt(func(c *Config) *int { return &c.Metrics.CacheSize })},
		"LOG_LEVEL":        {"logging.level", envString(func(c *Config) *string { return &c.Logging.Level })},
		"LOG_DEVELOPMENT":  {"logging.development", envBool(func(c *Config) *bool { return &c.Logging.Development })},
	}
}

// EnvVars returns the names of all recognised environment variables.
func EnvVars() []string {
	m := envMapping()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, EnvPrefix+name)
	}
	sort.Strings(names)
	return names
}

// ApplyEnv applies environment overrides to cfg.
// Note: Empty string values are treated as valid values, not as unset.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name, s := range envMapping() {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := s.set(cfg, v); err != nil {
			return fmt.Errorf("%w: %s%s (%s): %v", ErrInvalidConfig, EnvPrefix, name, s.path, err)
		}
	}
	return nil
}
