package config

import "athena/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`       // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"` // one JSON object per line
	DebugMode  bool            `yaml:"debug_mode"`  // Master toggle - false = no logging (production)
	Categories map[string]bool `yaml:"categories"`  // Per-category toggles
}

// Options converts the config into logging package options.
// verbose forces debug mode at debug level.
func (c LoggingConfig) Options(verbose bool) logging.Options {
	o := logging.Options{
		DebugMode:  c.DebugMode,
		Level:      c.Level,
		JSONFormat: c.JSONFormat,
		Categories: c.Categories,
	}
	if verbose {
		o.DebugMode = true
		o.Level = "debug"
	}
	return o
}
