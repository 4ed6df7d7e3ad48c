package ocr

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds recognition parameters.
type Config struct {
	Languages   []string `toml:"languages"`
	PageSegMode int      `toml:"page_seg_mode"`
	Timeout     string   `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Languages   string
	PageSegMode string
	Timeout     string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
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
	if overlay.Languages != nil {
		c.Languages = overlay.Languages
	}
	if overlay.PageSegMode != 0 {
		c.PageSegMode = overlay.PageSegMode
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if len(c.Languages) == 0 {
		c.Languages = []string{"eng"}
	}
	if c.PageSegMode == 0 {
		c.PageSegMode = 3
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Languages != "" {
		if v := os.Getenv(env.Languages); v != "" {
			langs := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '+' })
			c.Languages = make([]string, 0, len(langs))
			for _, lang := range langs {
				if trimmed := strings.TrimSpace(lang); trimmed != "" {
					c.Languages = append(c.Languages, trimmed)
				}
			}
		}
	}
	if env.PageSegMode != "" {
		if v := os.Getenv(env.PageSegMode); v != "" {
			if mode, err := strconv.Atoi(v); err == nil {
				c.PageSegMode = mode
			}
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("languages required")
	}
	// 0 is orientation detection only and produces no text.
	if c.PageSegMode < 1 || c.PageSegMode > 13 {
		return fmt.Errorf("invalid page_seg_mode: %d", c.PageSegMode)
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	return nil
}
