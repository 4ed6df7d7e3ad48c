package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/scrivener/pkg/metrics"
	"github.com/JaimeStill/scrivener/pkg/ocr"
	"github.com/JaimeStill/scrivener/pkg/spell"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvScrivenerEnv             = "SCRIVENER_ENV"
	EnvScrivenerShutdownTimeout = "SCRIVENER_SHUTDOWN_TIMEOUT"
	EnvScrivenerVersion         = "SCRIVENER_VERSION"
	EnvScrivenerLogLevel        = "SCRIVENER_LOG_LEVEL"
)

var storageEnv = &storage.Env{
	BaseDir: "SCRIVENER_STORAGE_BASE_DIR",
	Prefix:  "SCRIVENER_STORAGE_PREFIX",
}

var ocrEnv = &ocr.Env{
	Languages:   "SCRIVENER_OCR_LANGUAGES",
	PageSegMode: "SCRIVENER_OCR_PAGE_SEG_MODE",
	Timeout:     "SCRIVENER_OCR_TIMEOUT",
}

var spellEnv = &spell.Env{
	Corpus:    "SCRIVENER_SPELL_CORPUS",
	Depth:     "SCRIVENER_SPELL_DEPTH",
	Threshold: "SCRIVENER_SPELL_THRESHOLD",
}

var metricsEnv = &metrics.Env{
	Enabled: "SCRIVENER_METRICS_ENABLED",
}

// Config is the root configuration for the Scrivener service.
type Config struct {
	Server          ServerConfig   `toml:"server"`
	Storage         storage.Config `toml:"storage"`
	Site            SiteConfig     `toml:"site"`
	OCR             ocr.Config     `toml:"ocr"`
	Spell           spell.Config   `toml:"spell"`
	Metrics         metrics.Config `toml:"metrics"`
	ShutdownTimeout string         `toml:"shutdown_timeout"`
	Version         string         `toml:"version"`
	LogLevel        string         `toml:"log_level"`
}

// Env returns the SCRIVENER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvScrivenerEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Storage.Merge(&overlay.Storage)
	c.Site.Merge(&overlay.Site)
	c.OCR.Merge(&overlay.OCR)
	c.Spell.Merge(&overlay.Spell)
	c.Metrics.Merge(&overlay.Metrics)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Site.Finalize(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.OCR.Finalize(ocrEnv); err != nil {
		return fmt.Errorf("ocr: %w", err)
	}
	if err := c.Spell.Finalize(spellEnv); err != nil {
		return fmt.Errorf("spell: %w", err)
	}
	if err := c.Metrics.Finalize(metricsEnv); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvScrivenerShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvScrivenerVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvScrivenerLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvScrivenerEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
