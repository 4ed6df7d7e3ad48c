package flash

import (
	"encoding/base64"
	"fmt"
	"os"
)

// Config holds the flash cookie settings. Secret is a base64 key used to
// sign the cookie; when empty a random key is generated per process, which
// invalidates pending messages across restarts.
type Config struct {
	CookieName string `toml:"cookie_name"`
	Secret     string `toml:"secret"`
	Secure     bool   `toml:"secure"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	CookieName string
	Secret     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Secure always applies.
func (c *Config) Merge(overlay *Config) {
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	c.Secure = overlay.Secure
}

func (c *Config) loadDefaults() {
	if c.CookieName == "" {
		c.CookieName = "flash"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.CookieName != "" {
		if v := os.Getenv(env.CookieName); v != "" {
			c.CookieName = v
		}
	}
	if env.Secret != "" {
		if v := os.Getenv(env.Secret); v != "" {
			c.Secret = v
		}
	}
}

func (c *Config) validate() error {
	if c.Secret == "" {
		return nil
	}
	key, err := base64.StdEncoding.DecodeString(c.Secret)
	if err != nil {
		return fmt.Errorf("secret must be base64: %w", err)
	}
	if len(key) < 32 {
		return fmt.Errorf("secret must decode to at least 32 bytes, got %d", len(key))
	}
	return nil
}
