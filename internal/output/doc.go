// Package output renders a materialized configuration for downstream code
// generators or for display.
//
// Four formats are supported:
//   - text: one "key = value" line per key, sorted (default)
//   - json: a flat JSON object
//   - yaml: a flat YAML mapping
//   - toml: flat TOML key/value pairs
//
// Use [GetWriter] to obtain a [Writer] for a given format string, or
// [WriteConfig] to render straight to a file, directory or stdout.
package output
