package procs

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/dshills/rvconf/internal/derive"
)

// AddressWidth derives the number of bits needed to index Input entries.
type AddressWidth struct {
	name   string
	Input  string
	Output string
}

func widthFactory(name, input, output string) derive.Factory {
	return func(p derive.Params) (derive.Procedure, error) {
		in, err := p.String("input", input)
		if err != nil {
			return nil, err
		}
		out, err := p.String("output", output)
		if err != nil {
			return nil, err
		}
		return AddressWidth{name: name, Input: in, Output: out}, nil
	}
}

func (w AddressWidth) Name() string { return w.name }
func (w AddressWidth) Requires() []string { return []string{w.Input} }
func (w AddressWidth) Provides() []string { return []string{w.Output} }
func (w AddressWidth) Consumes() []string { return nil }

// Apply writes ceil(log2(count)) under Output.
func (w AddressWidth) Apply(cfg derive.Config) (derive.Config, error) {
	count, err := cfg.Int(w.Input)
	if err != nil {
		return derive.Config{}, err
	}
	width, err := IndexWidth(count)
	if err != nil {
		return derive.Config{}, errors.Wrap(err, w.Input)
	}
	return cfg.Builder().Set(w.Output, width).Build(), nil
}

// IndexWidth returns ceil(log2(count)), the number of bits needed to address
// count entries. A single entry needs no bits.
func IndexWidth(count int64) (int64, error) {
	if count < 1 {
		return 0, errors.Errorf("count must be at least 1, got %d", count)
	}
	return int64(bits.Len64(uint64(count - 1))), nil
}
