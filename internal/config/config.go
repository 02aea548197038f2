package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the rvconf settings.
type Config struct {
	Format       string      `yaml:"format" json:"format"`
	Out          string      `yaml:"out,omitempty" json:"out,omitempty"`
	ScriptsDir   string      `yaml:"scriptsDir" json:"scriptsDir"`
	IncludesName string      `yaml:"includesName" json:"includesName"`
	Strict       bool        `yaml:"strict" json:"strict"`
	LogFormat    string      `yaml:"logFormat" json:"logFormat"`
	Cache        CacheConfig `yaml:"cache" json:"cache"`
}

// CacheConfig controls caching of materialized configs.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	Dir        string `yaml:"dir,omitempty" json:"dir,omitempty"`
	TTLSeconds int    `yaml:"ttlSeconds" json:"ttlSeconds"`
}

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "yaml", "toml"}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format:       "text",
		ScriptsDir:   "scripts",
		IncludesName: "includes",
		LogFormat:    "text",
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 7 * 86400,
		},
	}
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if !contains(Formats, c.Format) {
		return errors.Errorf("unsupported output format %q (want one of %v)", c.Format, Formats)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.Errorf("unsupported log format %q (want text or json)", c.LogFormat)
	}
	if c.ScriptsDir == "" {
		return errors.New("scriptsDir must not be empty")
	}
	if c.IncludesName == "" {
		return errors.New("includesName must not be empty")
	}
	if c.Cache.TTLSeconds < 0 {
		return errors.Errorf("cache.ttlSeconds must not be negative, got %d", c.Cache.TTLSeconds)
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for rvconf.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rvconf"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine home directory")
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "rvconf"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "rvconf"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "rvconf"), nil
	default:
		return filepath.Join(home, ".config", "rvconf"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile decodes the config file on top of base. Fields absent from the
// file keep their value from base. A missing file returns base unchanged.
func LoadFile(base Config) (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return Config{}, errors.Wrap(err, "reading config file")
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config file %s", path)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags, keyed like SetField.
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile(Default())
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var envKeys = []struct {
	env, key string
}{
	{"RVCONF_FORMAT", "format"},
	{"RVCONF_OUT", "out"},
	{"RVCONF_SCRIPTS_DIR", "scriptsDir"},
	{"RVCONF_INCLUDES", "includesName"},
	{"RVCONF_STRICT", "strict"},
	{"RVCONF_LOG_FORMAT", "logFormat"},
	{"RVCONF_CACHE", "cache.enabled"},
	{"RVCONF_CACHE_DIR", "cache.dir"},
	{"RVCONF_CACHE_TTL", "cache.ttlSeconds"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return errors.Wrap(err, e.env)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for k, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, k, v); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "format":
		cfg.Format = value
	case "out":
		cfg.Out = value
	case "scriptsDir":
		cfg.ScriptsDir = value
	case "includesName":
		cfg.IncludesName = value
	case "strict":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrap(err, "strict must be a boolean")
		}
		cfg.Strict = b
	case "logFormat":
		cfg.LogFormat = value
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrap(err, "cache.enabled must be a boolean")
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrap(err, "cache.ttlSeconds must be an integer")
		}
		cfg.Cache.TTLSeconds = n
	default:
		return errors.Errorf("unknown config key: %s", key)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
