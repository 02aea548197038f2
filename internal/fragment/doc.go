// Package fragment discovers declarative configuration fragments under a
// directory tree and merges them into a single flat configuration.
//
// A fragment is a TOML (or YAML) file made of named top-level tables. The
// loader unions the contents of every table across every fragment and drops
// the table names. Files named after the includes fragment and anything under
// a procedure scripts directory are not merged.
//
// Files are merged in lexical order of their slash-separated path relative to
// the root, so when two fragments define the same key the one sorting last
// wins. Every such collision is reported in [Result.Collisions] and logged; in
// strict mode the first one aborts the load with a [*CollisionError].
package fragment
