// Package manifest discovers derivation procedure manifests.
//
// A manifest is a small YAML file living in a scripts directory next to the
// fragments it works on. It names a registered procedure and may carry
// parameters for it:
//
//	procedure: memory_map
//	params:
//	  regions: [rom, ram, ext_ram]
//
// Manifests only select and configure procedures that are compiled into the
// binary; nothing is loaded at run time.
package manifest
