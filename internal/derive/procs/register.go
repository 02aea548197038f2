package procs

import (
	"github.com/dshills/rvconf/internal/derive"
)

// Procedure names.
const (
	NameClockDivider  = "clock_divider"
	NameCSRWidth      = "csr_address_width"
	NameRegisterWidth = "register_address_width"
	NameMemoryMap     = "memory_map"
)

// Register adds every built-in procedure to r.
func Register(r *derive.Registry) error {
	descs := []derive.Descriptor{
		{
			Name:    NameClockDivider,
			Summary: "clock divider max, threshold and counter width from core and cycle clock frequencies",
			New:     newClockDivider,
		},
		{
			Name:    NameCSRWidth,
			Summary: "CSR address width from csr_count",
			New:     widthFactory(NameCSRWidth, "csr_count", "csr_address_width"),
		},
		{
			Name:    NameRegisterWidth,
			Summary: "register address width from register_count",
			New:     widthFactory(NameRegisterWidth, "register_count", "register_address_width"),
		},
		{
			Name:    NameMemoryMap,
			Summary: "address bits and mask for each memory region, replacing its base and length",
			New:     newMemoryMap,
		},
	}
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// Builtin returns a registry holding every built-in procedure.
func Builtin() *derive.Registry {
	r := derive.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}
