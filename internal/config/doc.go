// Package config provides configuration management for Caret.
//
// Configuration comes from three layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A configuration file in TOML or YAML
//  3. Environment variables with the CARET_ prefix
//
// # File Formats
//
// The format is chosen from the file extension: ".toml" is parsed with
// go-toml, ".yaml" and ".yml" with yaml.v3. Unknown keys are rejected so
// that typos surface as errors instead of being silently ignored. A missing
// file is not an error; the defaults are used.
//
//	[editor]
//	caret_width = 2
//	overflow = "line-end"
//
//	[style]
//	foreground = "#e0e0e0"
//	background = "#264f78"
//	font_size = 13
//
//	[metrics]
//	kind = "cell"
//
// # Environment Variables
//
// Individual settings can be overridden from the environment:
//
//	CARET_CARET_WIDTH=3 CARET_OVERFLOW=line-start CARET_LOG_LEVEL=debug caret
//
// # Live Reload
//
// Watcher watches a configuration file with fsnotify and calls back with
// the reloaded configuration after a short debounce. Invalid edits are
// reported to the error handler and the previous configuration stays in
// effect.
package config
