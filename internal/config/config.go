// Package config loads textcore configuration.
//
// Configuration is resolved in three layers, lowest priority first:
//
//  1. Built-in defaults (Default)
//  2. A TOML file (LoadFile)
//  3. Environment variables with the TEXTCORE_ prefix (ApplyEnv)
//
// Example file:
//
//	[buffer]
//	slack = 4096
//	max_undo_entries = 500
//	read_only = false
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[watch]
//	enabled = true
//	debounce = "200ms"
package config

import (
	"fmt"
	"time"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "TEXTCORE_"

// Config is the complete textcore configuration.
type Config struct {
	Buffer BufferConfig `toml:"buffer"`
	Log    LogConfig    `toml:"log"`
	Watch  WatchConfig  `toml:"watch"`
}

// BufferConfig holds settings applied to every new buffer.
type BufferConfig struct {
	// Slack is the spare capacity reserved on allocation and growth.
	Slack int `toml:"slack"`
	// MaxUndoEntries bounds the undo stack.
	MaxUndoEntries int `toml:"max_undo_entries"`
	// ReadOnly opens buffers in read-only mode.
	ReadOnly bool `toml:"read_only"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce"`
}

// Duration is a time.Duration written as a Go duration string ("150ms").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Buffer: BufferConfig{
			Slack:          2048,
			MaxUndoEntries: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: Duration(100 * time.Millisecond),
		},
	}
}

// Validate checks the configuration for values no component can use.
func (c Config) Validate() error {
	var errs []error

	if c.Buffer.Slack < 0 {
		errs = append(errs, &ValidationError{Path: "buffer.slack", Value: c.Buffer.Slack, Message: "must be >= 0"})
	}
	if c.Buffer.MaxUndoEntries < 1 {
		errs = append(errs, &ValidationError{Path: "buffer.max_undo_entries", Value: c.Buffer.MaxUndoEntries, Message: "must be >= 1"})
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, &ValidationError{Path: "log.level", Value: c.Log.Level, Message: "must be debug, info, warn or error"})
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, &ValidationError{Path: "log.format", Value: c.Log.Format, Message: "must be text or json"})
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, &ValidationError{Path: "watch.debounce", Value: c.Watch.Debounce.Std(), Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return &MultiError{Errors: errs}
	}
	return nil
}

// Load resolves the full configuration: defaults, then the file at path
// (skipped when path is empty or the file does not exist), then the
// environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := ApplyEnv(&cfg, EnvPrefix); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
