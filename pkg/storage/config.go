package storage

import (
	"fmt"
	"os"
	"strings"
)

// Config describes where the process-lifetime artifact directory is created.
// BaseDir defaults to the system temp directory; the directory name is
// Prefix followed by a random suffix.
type Config struct {
	BaseDir string `toml:"base_dir"`
	Prefix  string `toml:"prefix"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseDir string
	Prefix  string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseDir != "" {
		c.BaseDir = overlay.BaseDir
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
}

func (c *Config) loadDefaults() {
	if c.BaseDir == "" {
		c.BaseDir = os.TempDir()
	}
	if c.Prefix == "" {
		c.Prefix = "ocr_files_"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseDir != "" {
		if v := os.Getenv(env.BaseDir); v != "" {
			c.BaseDir = v
		}
	}
	if env.Prefix != "" {
		if v := os.Getenv(env.Prefix); v != "" {
			c.Prefix = v
		}
	}
}

func (c *Config) validate() error {
	if strings.ContainsAny(c.Prefix, `/\`) {
		return fmt.Errorf("prefix must not contain path separators: %q", c.Prefix)
	}
	return nil
}
