package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
data_dir: `+dir+`
store: sqlite
theme: dracula
search_debounce: 500ms
latency:
  min: 0s
  max: 0s
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.Theme != "dracula" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SearchDebounce != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.SearchDebounce)
	}
	if cfg.DBPath != filepath.Join(dir, "taskflow.db") {
		t.Errorf("db path = %s", cfg.DBPath)
	}
	if cfg.Log.File != filepath.Join(dir, "taskflow.log") {
		t.Errorf("log file = %s", cfg.Log.File)
	}
	// untouched fields keep defaults
	if cfg.Addr != Default().Addr {
		t.Errorf("addr = %s", cfg.Addr)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "store: memory\ntheme: gruvbox\n")
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "gruvbox" {
		t.Errorf("theme = %s", cfg.Theme)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for explicit missing config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown store", func(c *Config) { c.Store = "redis" }, "unknown store"},
		{"remote without url", func(c *Config) { c.Store = StoreRemote }, "remote_url"},
		{"inverted latency", func(c *Config) { c.Latency.Min = time.Second }, "exceeds"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
