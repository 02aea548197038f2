package procs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rvconf/internal/derive"
)

func TestClockDivider(t *testing.T) {
	cfg := derive.NewConfig(map[string]any{
		KeyCoreClockFrequency:  int64(100_000_000),
		KeyCycleClockFrequency: int64(1_000_000),
	})
	out, err := derive.Apply(cfg, ClockDivider{})
	require.NoError(t, err)

	divMax, err := out.Float(KeyClockDividerMax)
	require.NoError(t, err)
	require.Equal(t, 99.0, divMax)

	thresh, err := out.Float(KeyClockDividerThresh)
	require.NoError(t, err)
	require.InDelta(t, 1.99, thresh, 1e-9)

	width, err := out.Int(KeyClockDividerWidth)
	require.NoError(t, err)
	require.Equal(t, int64(7), width)
}

func TestClockDivider_Widths(t *testing.T) {
	tests := []struct {
		core, cycle float64
		want        int64
	}{
		{2, 1, 1},     // max 1
		{3, 1, 2},     // max 2
		{5, 1, 3},     // max 4
		{65, 1, 7},    // max 64
		{64, 1, 6},    // max 63
		{50e6, 1e6, 6}, // max 49
	}
	for _, tt := range tests {
		cfg := derive.NewConfig(map[string]any{
			KeyCoreClockFrequency:  tt.core,
			KeyCycleClockFrequency: tt.cycle,
		})
		out, err := ClockDivider{}.Apply(cfg)
		require.NoError(t, err)
		width, err := out.Int(KeyClockDividerWidth)
		require.NoError(t, err)
		require.Equal(t, tt.want, width, "core=%v cycle=%v", tt.core, tt.cycle)
	}
}

func TestClockDivider_Invalid(t *testing.T) {
	tests := []map[string]any{
		{KeyCoreClockFrequency: int64(100), KeyCycleClockFrequency: int64(0)},
		{KeyCoreClockFrequency: int64(-100), KeyCycleClockFrequency: int64(1)},
		{KeyCoreClockFrequency: int64(1), KeyCycleClockFrequency: int64(1)},
		{KeyCoreClockFrequency: int64(3), KeyCycleClockFrequency: int64(2)},
		{KeyCoreClockFrequency: 199.0, KeyCycleClockFrequency: int64(100)},
		{KeyCoreClockFrequency: "fast", KeyCycleClockFrequency: int64(1)},
	}
	for _, m := range tests {
		_, err := derive.Apply(derive.NewConfig(m), ClockDivider{})
		var de *derive.DerivationError
		require.True(t, errors.As(err, &de), "config %v", m)
		require.Equal(t, NameClockDivider, de.Procedure)
	}
}

func TestIndexWidth(t *testing.T) {
	tests := []struct {
		count int64
		want  int64
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{16, 4},
		{17, 5},
		{32, 5},
		{4096, 12},
	}
	for _, tt := range tests {
		got, err := IndexWidth(tt.count)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "count=%d", tt.count)
	}
	_, err := IndexWidth(0)
	require.Error(t, err)
}

func TestAddressWidth(t *testing.T) {
	r := Builtin()
	csr, err := r.New("test", NameCSRWidth, nil)
	require.NoError(t, err)
	reg, err := r.New("test", NameRegisterWidth, nil)
	require.NoError(t, err)

	cfg := derive.NewConfig(map[string]any{"csr_count": int64(17), "register_count": int64(32)})
	out, err := derive.ApplyAll(cfg, []derive.Procedure{csr, reg})
	require.NoError(t, err)

	w, err := out.Int("csr_address_width")
	require.NoError(t, err)
	require.Equal(t, int64(5), w)

	w, err = out.Int("register_address_width")
	require.NoError(t, err)
	require.Equal(t, int64(5), w)
}

func TestAddressWidth_CustomKeys(t *testing.T) {
	p, err := Builtin().New("test", NameCSRWidth, derive.Params{"input": "irq_count", "output": "irq_width"})
	require.NoError(t, err)
	require.Equal(t, []string{"irq_count"}, p.Requires())
	require.Equal(t, []string{"irq_width"}, p.Provides())

	out, err := derive.Apply(derive.NewConfig(map[string]any{"irq_count": int64(16)}), p)
	require.NoError(t, err)
	w, err := out.Int("irq_width")
	require.NoError(t, err)
	require.Equal(t, int64(4), w)
}

func TestAddressWidth_MissingCount(t *testing.T) {
	p, err := Builtin().New("test", NameRegisterWidth, nil)
	require.NoError(t, err)
	_, err = derive.Apply(derive.NewConfig(nil), p)
	var mk *derive.MissingKeyError
	require.True(t, errors.As(err, &mk))
	require.Equal(t, "register_count", mk.Key)
}

func TestPartitionOf_PowerOfTwo(t *testing.T) {
	for sizeBits := int64(0); sizeBits <= 32; sizeBits++ {
		length := int64(1) << uint(sizeBits)
		part, err := PartitionOf(0x8000_0000, length)
		require.NoError(t, err)
		require.Equal(t, sizeBits, part.SizeBits)
		require.Equal(t, int64(32), part.AddrBits+part.SizeBits)

		again, err := PartitionOf(0x8000_0000, length)
		require.NoError(t, err)
		require.Equal(t, part, again)
	}
}

func TestPartitionOf_RoundsUp(t *testing.T) {
	part, err := PartitionOf(0, 3000)
	require.NoError(t, err)
	require.Equal(t, int64(12), part.SizeBits)
	require.Equal(t, int64(20), part.AddrBits)
}

func TestPartitionOf_Invalid(t *testing.T) {
	_, err := PartitionOf(0, 0)
	require.Error(t, err)
	_, err = PartitionOf(-1, 16)
	require.Error(t, err)
	_, err = PartitionOf(0, 1<<33)
	require.Error(t, err)
}

func TestMemoryMap_Discovered(t *testing.T) {
	cfg := derive.NewConfig(map[string]any{
		"rom_base":          int64(0x0),
		"rom_length":        "64K",
		"ram_base":          int64(0x1000_0000),
		"ram_length":        "4M",
		"ext_ram_base":      int64(0x2000_0000),
		"ext_ram_length":    int64(1 << 24),
		"gpio0_base":        int64(0x4000_0000),
		"timer0_base":       int64(0x4000_1000),
		"peripheral_length": "4K",
		"xlen":              int64(32),
	})
	out, err := derive.Apply(cfg, MemoryMap{SharedLength: DefaultSharedLength})
	require.NoError(t, err)

	expect := map[string]int64{
		"rom_addr_bits":     16,
		"rom_addr_mask":     0,
		"ram_addr_bits":     10,
		"ram_addr_mask":     0x1000_0000 >> 22,
		"ext_ram_addr_bits": 8,
		"ext_ram_addr_mask": 0x2000_0000 >> 24,
		"gpio0_addr_bits":   20,
		"gpio0_addr_mask":   0x4000_0000 >> 12,
		"timer0_addr_bits":  20,
		"timer0_addr_mask":  0x4000_1000 >> 12,
	}
	for k, want := range expect {
		got, err := out.Int(k)
		require.NoError(t, err, k)
		require.Equal(t, want, got, k)
	}
	for _, k := range []string{"rom_base", "rom_length", "ram_base", "ram_length", "ext_ram_base",
		"ext_ram_length", "gpio0_base", "timer0_base", "peripheral_length"} {
		require.False(t, out.Has(k), k)
	}
	require.True(t, out.Has("xlen"))
}

func TestMemoryMap_ExplicitRegions(t *testing.T) {
	p, err := Builtin().New("scripts/memory.yaml", NameMemoryMap, derive.Params{
		"regions": []any{
			"rom",
			map[string]any{"name": "uart", "base": "uart_addr", "length": "io_window"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"io_window", "rom_base", "rom_length", "uart_addr"}, p.Requires())
	require.Equal(t, []string{"rom_addr_bits", "rom_addr_mask", "uart_addr_bits", "uart_addr_mask"}, p.Provides())

	cfg := derive.NewConfig(map[string]any{
		"rom_base":   int64(0),
		"rom_length": "1K",
		"uart_addr":  int64(0x3000),
		"io_window":  "256",
		"other_base": int64(0x10),
	})
	out, err := derive.Apply(cfg, p)
	require.NoError(t, err)

	bits, err := out.Int("uart_addr_bits")
	require.NoError(t, err)
	require.Equal(t, int64(24), bits)
	mask, err := out.Int("uart_addr_mask")
	require.NoError(t, err)
	require.Equal(t, int64(0x30), mask)
	require.True(t, out.Has("other_base"), "regions outside the list are left alone")
	require.False(t, out.Has("io_window"))
}

func TestMemoryMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
	}{
		{"missing length", map[string]any{"rom_base": int64(0)}},
		{"malformed length", map[string]any{"rom_base": int64(0), "rom_length": "64KB"}},
		{"string base", map[string]any{"rom_base": "zero", "rom_length": "64K"}},
		{"zero length", map[string]any{"rom_base": int64(0), "rom_length": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := derive.Apply(derive.NewConfig(tt.cfg), MemoryMap{SharedLength: DefaultSharedLength})
			var de *derive.DerivationError
			require.True(t, errors.As(err, &de))
		})
	}
}

func TestNewMemoryMap_BadParams(t *testing.T) {
	r := Builtin()
	_, err := r.New("m.yaml", NameMemoryMap, derive.Params{"regions": "rom"})
	require.Error(t, err)
	_, err = r.New("m.yaml", NameMemoryMap, derive.Params{"regions": []any{map[string]any{"base": "x"}}})
	require.Error(t, err)
	_, err = r.New("m.yaml", NameMemoryMap, derive.Params{"regions": []any{42}})
	require.Error(t, err)
}

func TestBuiltin_Names(t *testing.T) {
	require.Equal(t, []string{NameClockDivider, NameCSRWidth, NameRegisterWidth, NameMemoryMap}, Builtin().Names())
}
