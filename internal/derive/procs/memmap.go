package procs

import (
	"math/bits"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/dshills/rvconf/internal/derive"
	"github.com/dshills/rvconf/internal/size"
)

// AddressBits is the width of the address space regions are carved from.
const AddressBits = 32

// DefaultSharedLength is the length key used by regions without their own
// <region>_length key.
const DefaultSharedLength = "peripheral_length"

// Region names the keys describing one memory region.
type Region struct {
	Name   string
	Base   string
	Length string
}

func (r Region) bitsKey() string { return r.Name + "_addr_bits" }
func (r Region) maskKey() string { return r.Name + "_addr_mask" }

// Partition is the position of a region in the address space.
type Partition struct {
	SizeBits int64
	AddrBits int64
	AddrMask int64
}

// PartitionOf computes the partition of a region of length bytes starting at
// base. Lengths that are not a power of two are rounded up to the next one.
func PartitionOf(base, length int64) (Partition, error) {
	if length < 1 {
		return Partition{}, errors.Errorf("region length must be at least 1 byte, got %d", length)
	}
	if base < 0 {
		return Partition{}, errors.Errorf("region base must not be negative, got %d", base)
	}
	sizeBits := int64(bits.Len64(uint64(length - 1)))
	if sizeBits > AddressBits {
		return Partition{}, errors.Errorf("region of %d bytes does not fit a %d-bit address space", length, AddressBits)
	}
	return Partition{
		SizeBits: sizeBits,
		AddrBits: AddressBits - sizeBits,
		AddrMask: base >> uint(sizeBits),
	}, nil
}

// MemoryMap replaces each region's base and length keys with its address bits
// and mask. Without an explicit region list, every <region>_base key in the
// config is a region.
type MemoryMap struct {
	Regions      []Region
	SharedLength string
}

func newMemoryMap(p derive.Params) (derive.Procedure, error) {
	shared, err := p.String("shared_length", DefaultSharedLength)
	if err != nil {
		return nil, err
	}
	m := MemoryMap{SharedLength: shared}
	raw, ok := p["regions"]
	if !ok || raw == nil {
		return m, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.Errorf("parameter \"regions\": want a list, got %T", raw)
	}
	for i, item := range list {
		r, err := regionParam(item)
		if err != nil {
			return nil, errors.Wrapf(err, "regions[%d]", i)
		}
		m.Regions = append(m.Regions, r)
	}
	return m, nil
}

func regionParam(item any) (Region, error) {
	switch v := item.(type) {
	case string:
		return Region{Name: v, Base: v + "_base", Length: v + "_length"}, nil
	case map[string]any:
		p := derive.Params(v)
		name, err := p.String("name", "")
		if err != nil {
			return Region{}, err
		}
		if name == "" {
			return Region{}, errors.New("region has no name")
		}
		base, err := p.String("base", name+"_base")
		if err != nil {
			return Region{}, err
		}
		length, err := p.String("length", name+"_length")
		if err != nil {
			return Region{}, err
		}
		return Region{Name: name, Base: base, Length: length}, nil
	default:
		return Region{}, errors.Errorf("want a region name or table, got %T", item)
	}
}

func (m MemoryMap) Name() string { return NameMemoryMap }

func (m MemoryMap) Requires() []string {
	var keys []string
	for _, r := range m.Regions {
		keys = append(keys, r.Base, r.Length)
	}
	return dedupe(keys)
}

func (m MemoryMap) Provides() []string {
	var keys []string
	for _, r := range m.Regions {
		keys = append(keys, r.bitsKey(), r.maskKey())
	}
	return keys
}

func (m MemoryMap) Consumes() []string { return m.Requires() }

// Apply partitions every region, then deletes the raw base and length keys.
func (m MemoryMap) Apply(cfg derive.Config) (derive.Config, error) {
	regions := m.Regions
	if len(regions) == 0 {
		var err error
		if regions, err = m.discover(cfg); err != nil {
			return derive.Config{}, err
		}
	}

	b := cfg.Builder()
	for _, r := range regions {
		base, err := cfg.Int(r.Base)
		if err != nil {
			return derive.Config{}, err
		}
		raw, ok := cfg.Get(r.Length)
		if !ok {
			return derive.Config{}, errors.WithStack(&derive.MissingKeyError{Key: r.Length})
		}
		length, err := size.Value(raw)
		if err != nil {
			return derive.Config{}, errors.Wrap(err, r.Length)
		}
		part, err := PartitionOf(base, length)
		if err != nil {
			return derive.Config{}, errors.Wrap(err, r.Name)
		}
		b.Set(r.bitsKey(), part.AddrBits).Set(r.maskKey(), part.AddrMask)
	}
	for _, r := range regions {
		b.Delete(r.Base).Delete(r.Length)
	}
	return b.Build(), nil
}

func (m MemoryMap) discover(cfg derive.Config) ([]Region, error) {
	var regions []Region
	for _, k := range cfg.Keys() {
		name, ok := strings.CutSuffix(k, "_base")
		if !ok || name == "" {
			continue
		}
		r := Region{Name: name, Base: k, Length: name + "_length"}
		if !cfg.Has(r.Length) {
			if m.SharedLength == "" || !cfg.Has(m.SharedLength) {
				return nil, errors.WithStack(&derive.MissingKeyError{Key: r.Length})
			}
			r.Length = m.SharedLength
		}
		regions = append(regions, r)
	}
	return regions, nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
