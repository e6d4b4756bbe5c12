// Package config loads the dashboard configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the effective dashboard configuration.
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Window  WindowConfig  `yaml:"window"`
	Weather WeatherConfig `yaml:"weather"`
	System  SystemConfig  `yaml:"system"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Sinks   SinksConfig   `yaml:"sinks"`
}

// DisplayConfig sizes and paces the render target.
type DisplayConfig struct {
	Width         int           `yaml:"width"`
	Height        int           `yaml:"height"`
	FrameInterval time.Duration `yaml:"frame_interval"`
	BannerTimeout time.Duration `yaml:"banner_timeout"`
	StartScreen   string        `yaml:"start_screen"`
	ShowStats     bool          `yaml:"show_stats"`
}

// WindowConfig controls the desktop mirror window.
type WindowConfig struct {
	Enabled bool   `yaml:"enabled"`
	Scale   int    `yaml:"scale"`
	Title   string `yaml:"title"`
}

// WeatherConfig selects the forecast location.
type WeatherConfig struct {
	Enabled    bool          `yaml:"enabled"`
	LocationID string        `yaml:"location_id"`
	BaseURL    string        `yaml:"base_url"`
	Interval   time.Duration `yaml:"interval"`
}

// SystemConfig tunes system sampling.
type SystemConfig struct {
	TopProcesses int `yaml:"top_processes"`
}

// CacheConfig locates the download cache.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig sets the log level ("debug", "info", "warn", "error").
type LoggingConfig struct {
	Level string `yaml:"level"`
	Debug bool   `yaml:"debug"`
}

// SinksConfig configures additional frame outputs.
type SinksConfig struct {
	PNGDir string `yaml:"png_dir"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:         320,
			Height:        240,
			FrameInterval: 40 * time.Millisecond,
			BannerTimeout: 2 * time.Second,
			StartScreen:   "main",
		},
		Window: WindowConfig{
			Enabled: true,
			Scale:   2,
			Title:   "trellis",
		},
		Weather: WeatherConfig{
			Enabled:    true,
			LocationID: "bayern/muenchen/DE0006515",
			BaseURL:    "https://www.wetter.com/deutschland/",
			Interval:   10 * time.Minute,
		},
		System: SystemConfig{TopProcesses: 10},
		Cache:  CacheConfig{Dir: defaultCacheDir()},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "trellis")
	}
	return filepath.Join(os.TempDir(), "trellis-cache")
}

// DefaultConfigPath returns ~/.config/trellis/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "trellis", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads path over the defaults. Unknown keys are errors. A
// missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if !pathExists(path) {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeStrict(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}
	if c.Display.FrameInterval <= 0 {
		return fmt.Errorf("display.frame_interval must be positive")
	}
	if c.Display.BannerTimeout < 0 {
		return fmt.Errorf("display.banner_timeout must not be negative")
	}
	if c.Window.Scale < 1 {
		return fmt.Errorf("window.scale must be at least 1, got %d", c.Window.Scale)
	}
	if c.Weather.Enabled {
		if c.Weather.LocationID == "" {
			return fmt.Errorf("weather.location_id is required when weather is enabled")
		}
		if c.Weather.Interval < time.Minute {
			return fmt.Errorf("weather.interval must be at least 1m, got %s", c.Weather.Interval)
		}
	}
	if c.System.TopProcesses < 0 {
		return fmt.Errorf("system.top_processes must not be negative")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Save writes the configuration as YAML to path, creating parent
// directories.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
