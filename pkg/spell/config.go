package spell

import (
	"fmt"
	"os"
	"strconv"
)

// Config selects the training corpus and the edit distance searched.
// An empty Corpus trains on the embedded frequency-ranked English word
// list. Threshold is the minimum count a word needs before it is offered
// as a correction.
type Config struct {
	Corpus    string `toml:"corpus"`
	Depth     int    `toml:"depth"`
	Threshold int    `toml:"threshold"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Corpus    string
	Depth     string
	Threshold string
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
	if overlay.Corpus != "" {
		c.Corpus = overlay.Corpus
	}
	if overlay.Depth != 0 {
		c.Depth = overlay.Depth
	}
	if overlay.Threshold != 0 {
		c.Threshold = overlay.Threshold
	}
}

func (c *Config) loadDefaults() {
	if c.Depth == 0 {
		c.Depth = 2
	}
	if c.Threshold == 0 {
		c.Threshold = 1
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Corpus != "" {
		if v := os.Getenv(env.Corpus); v != "" {
			c.Corpus = v
		}
	}
	if env.Depth != "" {
		if v := os.Getenv(env.Depth); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Depth = n
			}
		}
	}
	if env.Threshold != "" {
		if v := os.Getenv(env.Threshold); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Threshold = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Depth < 1 || c.Depth > 3 {
		return fmt.Errorf("depth must be between 1 and 3: %d", c.Depth)
	}
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be positive: %d", c.Threshold)
	}
	return nil
}
