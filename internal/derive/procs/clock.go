package procs

import (
	"math"

	"github.com/pkg/errors"

	"github.com/dshills/rvconf/internal/derive"
)

// Keys read and written by the clock divider procedure.
const (
	KeyCoreClockFrequency  = "core_clock_frequency"
	KeyCycleClockFrequency = "cycle_clock_frequency"
	KeyClockDividerMax     = "clock_divider_max"
	KeyClockDividerThresh  = "clock_divider_threshold"
	KeyClockDividerWidth   = "clock_divider_width"
)

// ClockDivider sizes the divider that derives the cycle clock from the core
// clock.
type ClockDivider struct{}

func newClockDivider(derive.Params) (derive.Procedure, error) {
	return ClockDivider{}, nil
}

func (ClockDivider) Name() string { return NameClockDivider }

func (ClockDivider) Requires() []string {
	return []string{KeyCoreClockFrequency, KeyCycleClockFrequency}
}

func (ClockDivider) Provides() []string {
	return []string{KeyClockDividerMax, KeyClockDividerThresh, KeyClockDividerWidth}
}

func (ClockDivider) Consumes() []string { return nil }

// Apply computes max = core/cycle - 1, threshold = max/100 + 1 and
// width = floor(log2(max)) + 1. Division is floating point.
func (ClockDivider) Apply(cfg derive.Config) (derive.Config, error) {
	core, err := cfg.Float(KeyCoreClockFrequency)
	if err != nil {
		return derive.Config{}, err
	}
	cycle, err := cfg.Float(KeyCycleClockFrequency)
	if err != nil {
		return derive.Config{}, err
	}
	if core <= 0 || cycle <= 0 {
		return derive.Config{}, errors.Errorf("clock frequencies must be positive (core %v, cycle %v)", core, cycle)
	}

	// Below 1 the counter width floor(log2(max))+1 drops to 0 or less.
	divMax := core/cycle - 1
	if divMax < 1 {
		return derive.Config{}, errors.Errorf("clock divider max %v (core %v, cycle %v) is below 1; core clock must be at least twice the cycle clock", divMax, core, cycle)
	}
	threshold := divMax/100 + 1
	width := int64(math.Floor(math.Log2(divMax))) + 1

	return cfg.Builder().
		Set(KeyClockDividerMax, divMax).
		Set(KeyClockDividerThresh, threshold).
		Set(KeyClockDividerWidth, width).
		Build(), nil
}
