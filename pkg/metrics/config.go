package metrics

import (
	"os"
	"strconv"
)

// Config toggles the Prometheus exporter.
type Config struct {
	Enabled bool `toml:"enabled"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled string
}

// Finalize applies environment variable overrides.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return nil
}

// Merge overwrites fields from overlay. Boolean fields always apply.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
}
