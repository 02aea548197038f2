package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Format != "text" {
		t.Errorf("Default format = %q, want %q", cfg.Format, "text")
	}
	if cfg.ScriptsDir != "scripts" {
		t.Errorf("Default scriptsDir = %q, want %q", cfg.ScriptsDir, "scripts")
	}
	if cfg.IncludesName != "includes" {
		t.Errorf("Default includesName = %q, want %q", cfg.IncludesName, "includes")
	}
	if cfg.Strict {
		t.Error("Default strict should be false")
	}
	if cfg.Cache.Enabled {
		t.Error("Default cache should be disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("RVCONF_FORMAT", "json")
	t.Setenv("RVCONF_SCRIPTS_DIR", "procs")
	t.Setenv("RVCONF_INCLUDES", "shared")
	t.Setenv("RVCONF_STRICT", "true")
	t.Setenv("RVCONF_CACHE", "1")
	t.Setenv("RVCONF_CACHE_TTL", "60")

	cfg := Default()
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.ScriptsDir != "procs" {
		t.Errorf("ScriptsDir = %q, want %q", cfg.ScriptsDir, "procs")
	}
	if cfg.IncludesName != "shared" {
		t.Errorf("IncludesName = %q, want %q", cfg.IncludesName, "shared")
	}
	if !cfg.Strict {
		t.Error("Strict should be true")
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true")
	}
	if cfg.Cache.TTLSeconds != 60 {
		t.Errorf("Cache.TTLSeconds = %d, want 60", cfg.Cache.TTLSeconds)
	}
}

func TestMergeEnv_Invalid(t *testing.T) {
	tests := []struct {
		env, value string
	}{
		{"RVCONF_STRICT", "sometimes"},
		{"RVCONF_CACHE", "maybe"},
		{"RVCONF_CACHE_TTL", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			cfg := Default()
			if err := mergeEnv(&cfg); err == nil {
				t.Errorf("Expected error for %s=%s", tt.env, tt.value)
			}
		})
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	err := mergeOverrides(&cfg, map[string]string{
		"format": "yaml",
		"out":    "build/config.yaml",
		"strict": "true",
		"unset":  "",
	})
	if err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}
	if cfg.Format != "yaml" {
		t.Errorf("Format = %q, want %q", cfg.Format, "yaml")
	}
	if cfg.Out != "build/config.yaml" {
		t.Errorf("Out = %q, want %q", cfg.Out, "build/config.yaml")
	}
	if !cfg.Strict {
		t.Error("Strict should be true")
	}
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	if err := mergeOverrides(&cfg, nil); err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Config changed with nil overrides: %+v", cfg)
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()
	tests := []struct {
		key   string
		value string
	}{
		{"format", "toml"},
		{"out", "out.toml"},
		{"scriptsDir", "derivations"},
		{"includesName", "common"},
		{"strict", "false"},
		{"logFormat", "json"},
		{"cache.enabled", "true"},
		{"cache.dir", "/tmp/rvconf"},
		{"cache.ttlSeconds", "3600"},
	}
	for _, tt := range tests {
		if err := SetField(&cfg, tt.key, tt.value); err != nil {
			t.Errorf("SetField(%q, %q) error: %v", tt.key, tt.value, err)
		}
	}
	if cfg.Format != "toml" {
		t.Errorf("Format = %q, want %q", cfg.Format, "toml")
	}
	if cfg.Cache.Dir != "/tmp/rvconf" {
		t.Errorf("Cache.Dir = %q, want %q", cfg.Cache.Dir, "/tmp/rvconf")
	}
	if cfg.Cache.TTLSeconds != 3600 {
		t.Errorf("Cache.TTLSeconds = %d, want 3600", cfg.Cache.TTLSeconds)
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "nonexistent", "value"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestSetField_BadValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"strict", "maybe", "strict must be a boolean"},
		{"cache.enabled", "sometimes", "cache.enabled must be a boolean"},
		{"cache.ttlSeconds", "forever", "cache.ttlSeconds must be an integer"},
	}
	for _, tt := range tests {
		cfg := Default()
		err := SetField(&cfg, tt.key, tt.value)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("SetField(%q, %q) error = %v, want %q", tt.key, tt.value, err, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "xml" }},
		{"logFormat", func(c *Config) { c.LogFormat = "logfmt" }},
		{"scriptsDir", func(c *Config) { c.ScriptsDir = "" }},
		{"includesName", func(c *Config) { c.IncludesName = "" }},
		{"ttl", func(c *Config) { c.Cache.TTLSeconds = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	if path != "/tmp/xdg-test/rvconf/config.yaml" {
		t.Errorf("ConfigPath = %q, want %q", path, "/tmp/xdg-test/rvconf/config.yaml")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Format = "json"
	cfg.Strict = true
	cfg.Cache.Enabled = true
	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadFile(Default())
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadFile_PartialKeepsBase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "rvconf", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("format: toml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(Default())
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Format != "toml" {
		t.Errorf("Format = %q, want %q", cfg.Format, "toml")
	}
	if cfg.ScriptsDir != "scripts" {
		t.Errorf("ScriptsDir = %q, want default %q", cfg.ScriptsDir, "scripts")
	}
}

func TestLoad_Integration(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RVCONF_FORMAT", "yaml")

	cfg, err := Load(map[string]string{"format": "json"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q (flag beats env)", cfg.Format, "json")
	}
	if cfg.IncludesName != "includes" {
		t.Errorf("IncludesName = %q, want default", cfg.IncludesName)
	}

	if _, err := Load(map[string]string{"format": "xml"}); err == nil {
		t.Error("Expected validation error for unsupported format")
	}
}
