// Package cache provides a file-based cache for materialized configurations.
//
// Entries are keyed by a SHA-256 [Digest] over everything that determines a
// derivation result: the tool version, the fragment and manifest contents and
// the settings that affect merging. Each entry stores the encoded config with
// a creation timestamp and a TTL (in seconds). Expired entries are skipped on
// read and removed during cache-clear operations.
//
// The default cache directory is $XDG_CACHE_HOME/rvconf (or the OS-appropriate
// equivalent).
package cache
