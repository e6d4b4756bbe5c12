package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Display.Width != 320 || cfg.Display.Height != 240 {
		t.Fatalf("expected 320x240 default display, got %dx%d", cfg.Display.Width, cfg.Display.Height)
	}
	if cfg.Display.StartScreen != "main" {
		t.Fatalf("expected main start screen, got %q", cfg.Display.StartScreen)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Display.FrameInterval != 40*time.Millisecond {
		t.Fatalf("expected default frame interval, got %s", cfg.Display.FrameInterval)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "# empty\n")
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Window.Scale != 2 {
		t.Fatalf("expected default scale 2, got %d", cfg.Window.Scale)
	}
}

func TestLoadFromPath_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeConfig(t, `
display:
  frame_interval: 100ms
  start_screen: weather
weather:
  location_id: berlin/berlin/DE0001020
  interval: 15m
logging:
  level: debug
`)
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Display.FrameInterval != 100*time.Millisecond {
		t.Fatalf("frame_interval = %s", cfg.Display.FrameInterval)
	}
	if cfg.Display.Width != 320 {
		t.Fatalf("width should keep its default, got %d", cfg.Display.Width)
	}
	if cfg.Weather.LocationID != "berlin/berlin/DE0001020" || cfg.Weather.Interval != 15*time.Minute {
		t.Fatalf("weather = %+v", cfg.Weather)
	}
	if !cfg.Weather.Enabled {
		t.Fatalf("weather.enabled should keep its default")
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "display:\n  colour: red\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected unknown key to fail")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadFromPath_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"zero width":       "display:\n  width: 0\n",
		"tiny interval":    "weather:\n  interval: 10s\n",
		"bad level":        "logging:\n  level: loud\n",
		"scale":            "window:\n  scale: 0\n",
		"negative top":     "system:\n  top_processes: -1\n",
		"missing location": "weather:\n  location_id: \"\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, body))
			if err == nil || !strings.Contains(err.Error(), "invalid config") {
				t.Fatalf("expected invalid config error, got %v", err)
			}
		})
	}
}

func TestLoadFromPath_WeatherDisabledSkipsLocation(t *testing.T) {
	path := writeConfig(t, "weather:\n  enabled: false\n  location_id: \"\"\n")
	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("expected disabled weather to skip validation, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Display.StartScreen = "system"
	cfg.Sinks.PNGDir = "/tmp/frames"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Display.StartScreen != "system" || loaded.Sinks.PNGDir != "/tmp/frames" {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
	if loaded.Display.BannerTimeout != 2*time.Second {
		t.Fatalf("banner_timeout = %s", loaded.Display.BannerTimeout)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(".config", "trellis", "config.yaml")) {
		t.Fatalf("unexpected path %q", path)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}
