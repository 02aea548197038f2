// Package cli wires together the Cobra command tree for the rvconf binary.
//
// It defines the root command and all subcommands (derive, procs, config,
// cache, version), binds flags, reads settings, runs the derivation pipeline
// and returns deterministic exit codes for build scripts.
package cli
