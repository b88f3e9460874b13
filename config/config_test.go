package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DINE_BASE_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Errorf("refresh interval = %s", cfg.RefreshInterval)
	}
	if cfg.Session.MaxAge != 24*time.Hour {
		t.Errorf("session max age = %s", cfg.Session.MaxAge)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if len(cfg.Warnings()) != 0 {
		t.Errorf("a missing .env is not a warning: %v", cfg.Warnings())
	}
}

func TestLoadWarnsOnUnreadableDotenv(t *testing.T) {
	dir := t.TempDir()
	// A directory named .env cannot be read as a file.
	if err := os.Mkdir(filepath.Join(dir, ".env"), 0o700); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load(filepath.Join(dir, "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Warnings()) != 1 {
		t.Fatalf("warnings = %v", cfg.Warnings())
	}
}

func TestScreenLogFile(t *testing.T) {
	cfg := Default()
	cfg.Session.Dir = "/tmp/dine"
	if got := cfg.ScreenLogFile(); got != filepath.Join("/tmp/dine", LogFileName) {
		t.Errorf("default = %q", got)
	}
	cfg.Log.File = "/var/log/dine.log"
	if got := cfg.ScreenLogFile(); got != "/var/log/dine.log" {
		t.Errorf("configured = %q", got)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
base_url: http://menu.example
time_zone: America/Chicago
timeout: 5s
session:
  dir: /tmp/dine-test
log:
  level: debug
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DINE_BASE_URL", "http://override.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://override.example" {
		t.Errorf("env override not applied: %q", cfg.BaseURL)
	}
	if cfg.TimeZone != "America/Chicago" {
		t.Errorf("time zone = %q", cfg.TimeZone)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if cfg.Session.Dir != "/tmp/dine-test" {
		t.Errorf("session dir = %q", cfg.Session.Dir)
	}
	if cfg.Session.MaxAge != DefaultSessionMaxAge {
		t.Errorf("max age default lost: %s", cfg.Session.MaxAge)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadRejectsBadTimeZone(t *testing.T) {
	t.Setenv("DINE_TIME_ZONE", "Mars/Olympus")
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
