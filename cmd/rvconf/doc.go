// Rvconf is a configuration compiler for a RISC-V core build flow.
//
// It merges the declarative hardware parameter fragments found under a
// folder (memory map, register counts, clock ratios) into one namespace and
// derives the parameters HDL and header generators need: address bits and
// masks per memory region, CSR and register index widths and clock divider
// sizing.
//
// Usage:
//
//	rvconf derive configs/                 # print the materialized config
//	rvconf derive configs/ -o build/ --format toml
//	rvconf derive configs/ --strict        # fail on keys redefined across fragments
//	rvconf procs                           # list derivation procedures
//	rvconf config show                     # show effective settings
package main
