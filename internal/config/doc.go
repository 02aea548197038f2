// Package config loads and merges rvconf's own settings from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (RVCONF_FORMAT, RVCONF_STRICT, RVCONF_CACHE, etc.)
//  3. Config file ($XDG_CONFIG_HOME/rvconf/config.yaml)
//  4. Built-in defaults
//
// These settings drive the tool (output format, fragment discovery names,
// caching). They are unrelated to the hardware configuration being derived.
// Use [Load] to obtain a merged [Config], [Save] to write one back and
// [SetField] to change a single key.
package config
