// Package config holds all configuration for the gallery downloader. Values
// come from defaults, an optional YAML file, a .env file, and PGDL_*
// environment variables, in that order; command line flags override all of
// them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration tree.
type Config struct {
	Gallery GalleryConfig `yaml:"gallery"`
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// GalleryConfig controls the slideshow traversal.
type GalleryConfig struct {
	// URL of the page hosting the Pro Gallery widget.
	URL string `yaml:"url"`
	// ComponentID of the gallery widget, used to locate its entry in the
	// inline warmup payload.
	ComponentID string `yaml:"component_id"`
	// WarmupAdvances is the number of next-presses issued before the loop
	// starts reading slides, letting the widget settle into slideshow mode.
	WarmupAdvances int `yaml:"warmup_advances"`
	// MaxSlides bounds the loop when neither termination signal fires.
	MaxSlides int `yaml:"max_slides"`
	// SettleAttempts and SettleDelay bound the wait for an active slide to
	// appear after an advance.
	SettleAttempts int           `yaml:"settle_attempts"`
	SettleDelay    time.Duration `yaml:"settle_delay"`
	// AdvanceDelay is the pause after each advance before re-querying.
	AdvanceDelay time.Duration `yaml:"advance_delay"`
}

// BrowserConfig controls the (always visible) browser session.
type BrowserConfig struct {
	WindowWidth  int           `yaml:"window_width"`
	WindowHeight int           `yaml:"window_height"`
	PageLoadWait time.Duration `yaml:"page_load_wait"`
	UserAgent    string        `yaml:"user_agent"`
}

// OutputConfig controls where assets land.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// Album enables assembling the downloaded set into a single PDF.
	Album     bool   `yaml:"album"`
	AlbumPath string `yaml:"album_path"`
	Force     bool   `yaml:"force"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults for the supported
// gallery theme.
func DefaultConfig() *Config {
	return &Config{
		Gallery: GalleryConfig{
			ComponentID:    "comp-mizbkpxe",
			WarmupAdvances: 3,
			MaxSlides:      200,
			SettleAttempts: 4,
			SettleDelay:    1500 * time.Millisecond,
			AdvanceDelay:   800 * time.Millisecond,
		},
		Browser: BrowserConfig{
			WindowWidth:  1920,
			WindowHeight: 1080,
			PageLoadWait: 5 * time.Second,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Output: OutputConfig{
			Directory: "./gallery",
			AlbumPath: "album.pdf",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the given YAML file (optional,
// "" means none), a .env file if present, and environment overrides.
func Load(path string) (*Config, error) {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PGDL_GALLERY_URL"); v != "" {
		c.Gallery.URL = v
	}
	if v := os.Getenv("PGDL_COMPONENT_ID"); v != "" {
		c.Gallery.ComponentID = v
	}
	if v := os.Getenv("PGDL_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("PGDL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PGDL_MAX_SLIDES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Gallery.MaxSlides = n
		}
	}
}

// Validate checks the configuration for values the run cannot proceed with.
func (c *Config) Validate() error {
	if c.Gallery.URL == "" {
		return errors.New("gallery url is required")
	}
	if c.Output.Directory == "" {
		return errors.New("output directory is required")
	}
	if c.Gallery.MaxSlides <= 0 {
		return errors.New("max_slides must be positive")
	}
	if c.Gallery.SettleAttempts <= 0 {
		return errors.New("settle_attempts must be positive")
	}
	if c.Gallery.SettleDelay < 0 || c.Gallery.AdvanceDelay < 0 {
		return errors.New("delays must not be negative")
	}
	return nil
}
