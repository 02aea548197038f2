// Package pipeline turns a directory of configuration fragments into a
// materialized config: it loads and merges the fragments, resolves the
// derivation procedures selected by manifests (or the built-in set), orders
// them by their key dependencies and applies them.
//
// Results can be cached on disk keyed by a digest of every input, so
// repeated builds over unchanged fragments skip the derivation.
package pipeline
