package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rvconf/internal/derive"
	"github.com/dshills/rvconf/internal/derive/procs"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover_Colocated(t *testing.T) {
	root := t.TempDir()
	write(t, root, "core/scripts/clk.yaml", "procedure: clock_divider\n")
	write(t, root, "core/scripts/csr.yml", "procedure: csr_address_width\n")
	write(t, root, "memory/scripts/mem.yaml", "procedure: memory_map\nparams:\n  regions: [rom, ram]\n")
	write(t, root, "memory/memory.yaml", "map:\n  rom_base: 0\n")

	ms, err := Discover(root, "scripts")
	require.NoError(t, err)
	require.Len(t, ms, 3)
	require.Equal(t, "core/scripts/clk.yaml", ms[0].Source)
	require.Equal(t, "clock_divider", ms[0].Procedure)
	require.Equal(t, "memory/scripts/mem.yaml", ms[2].Source)
	require.Equal(t, []any{"rom", "ram"}, ms[2].Params["regions"])
}

func TestDiscover_WholeDir(t *testing.T) {
	root := t.TempDir()
	write(t, root, "b.yaml", "procedure: register_address_width\n")
	write(t, root, "a.yaml", "procedure: clock_divider\n")

	ms, err := Discover(root, "")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	require.Equal(t, "a.yaml", ms[0].Source)
}

func TestDiscover_UnknownField(t *testing.T) {
	root := t.TempDir()
	write(t, root, "scripts/typo.yaml", "procedur: clock_divider\n")

	_, err := Discover(root, "scripts")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, "scripts/typo.yaml", pe.File)
}

func TestResolve(t *testing.T) {
	ms := []Manifest{
		{Source: "scripts/clk.yaml", Procedure: procs.NameClockDivider},
		{Source: "scripts/irq.yaml", Procedure: procs.NameCSRWidth, Params: map[string]any{"input": "irq_count", "output": "irq_width"}},
	}
	got, err := Resolve(ms, procs.Builtin())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, []string{"irq_width"}, got[1].Provides())
}

func TestResolve_MissingCapability(t *testing.T) {
	tests := []struct {
		name string
		m    Manifest
	}{
		{"unregistered", Manifest{Source: "scripts/x.yaml", Procedure: "bus_width"}},
		{"empty", Manifest{Source: "scripts/empty.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve([]Manifest{tt.m}, procs.Builtin())
			var mc *derive.MissingCapabilityError
			require.True(t, errors.As(err, &mc))
			require.Equal(t, tt.m.Source, mc.Source)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	m, err := Decode(nil)
	require.NoError(t, err)
	require.Equal(t, "", m.Procedure)
}
