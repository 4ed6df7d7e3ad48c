package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/JaimeStill/scrivener/pkg/flash"
)

const (
	EnvSiteBasePath      = "SCRIVENER_SITE_BASE_PATH"
	EnvSiteMaxUploadSize = "SCRIVENER_SITE_MAX_UPLOAD_SIZE"
)

var flashEnv = &flash.Env{
	CookieName: "SCRIVENER_FLASH_COOKIE_NAME",
	Secret:     "SCRIVENER_FLASH_SECRET",
}

// SiteConfig holds the submission site's URL prefix, upload limit, and flash cookie settings.
type SiteConfig struct {
	BasePath      string       `toml:"base_path"`
	MaxUploadSize string       `toml:"max_upload_size"`
	Flash         flash.Config `toml:"flash"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *SiteConfig) MaxUploadSizeBytes() int64 {
	size, err := humanize.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 16 * 1024 * 1024
	}
	return int64(size)
}

// Finalize applies defaults, environment variable overrides, and validation
// for the site config and its nested flash config.
func (c *SiteConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Flash.Finalize(flashEnv); err != nil {
		return fmt.Errorf("flash: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *SiteConfig) Merge(overlay *SiteConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.Flash.Merge(&overlay.Flash)
}

func (c *SiteConfig) loadDefaults() {
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "16MiB"
	}
}

func (c *SiteConfig) loadEnv() {
	if v := os.Getenv(EnvSiteBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvSiteMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}

func (c *SiteConfig) validate() error {
	c.BasePath = strings.TrimSuffix(c.BasePath, "/")
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with /: %s", c.BasePath)
	}
	size, err := humanize.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size == 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	return nil
}
