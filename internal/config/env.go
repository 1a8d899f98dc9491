package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// setter applies one environment value to a Config.
type setter func(c *Config, value string) error

// envSettings maps setting paths to their setters.
var envSettings = map[string]setter{
	"buffer.slack": func(c *Config, v string) error {
		return setInt(&c.Buffer.Slack, v)
	},
	"buffer.max_undo_entries": func(c *Config, v string) error {
		return setInt(&c.Buffer.MaxUndoEntries, v)
	},
	"buffer.read_only": func(c *Config, v string) error {
		return setBool(&c.Buffer.ReadOnly, v)
	},
	"log.level": func(c *Config, v string) error {
		c.Log.Level = strings.ToLower(v)
		return nil
	},
	"log.format": func(c *Config, v string) error {
		c.Log.Format = strings.ToLower(v)
		return nil
	},
	"watch.enabled": func(c *Config, v string) error {
		return setBool(&c.Watch.Enabled, v)
	},
	"watch.debounce": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Watch.Debounce = Duration(d)
		return nil
	},
}

// ApplyEnv overrides cfg from environment variables carrying prefix.
// TEXTCORE_BUFFER_MAX_UNDO_ENTRIES maps to buffer.max_undo_entries.
// Variables that name no known setting are ignored.
// Note: Empty string values are treated as valid values, not as unset.
func ApplyEnv(cfg *Config, prefix string) error {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, prefix) {
			continue
		}

		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		path := envToPath(prefix, name)
		set, known := envSettings[path]
		if !known {
			continue
		}
		if err := set(cfg, value); err != nil {
			return fmt.Errorf("environment %s: %w", name, err)
		}
	}
	return nil
}

// envToPath converts TEXTCORE_BUFFER_READ_ONLY to buffer.read_only.
func envToPath(prefix, env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, prefix))

	// First part is the section, the rest is the key.
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return name
	}
	return section + "." + key
}

func setInt(dst *int, s string) error {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%q is not an integer", s)
	}
	*dst = i
	return nil
}

func setBool(dst *bool, s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0", "":
		*dst = false
	default:
		return fmt.Errorf("%q is not a boolean", s)
	}
	return nil
}
