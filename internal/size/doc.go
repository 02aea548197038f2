// Package size parses human-readable byte counts such as "64K", "4M" or "1G".
//
// Suffixes are binary multiples and case-insensitive: K is 2^10, M is 2^20 and
// G is 2^30. A literal without a suffix is a plain byte count.
package size
