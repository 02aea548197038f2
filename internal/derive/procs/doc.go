// Package procs implements the derivation procedures applied to a merged
// hardware configuration: clock divider sizing, CSR and register index widths
// and memory map partitioning.
//
// [Register] installs all of them into a [derive.Registry]; [Builtin] returns
// a registry preloaded with them.
package procs
