// Package cmap computes gamma-corrected colour maps for hardware palettes.
package cmap

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

const (
	// DefaultDepth is the number of entries per channel used when none is
	// configured.
	DefaultDepth = 256

	// DefaultMinGamma is the smallest gamma accepted when Params.MinGamma is
	// zero.
	DefaultMinGamma = 0.001

	// MaxDepth is the largest number of entries per channel. It is the size of
	// the largest X11 gamma ramp and of a 16-bit framebuffer palette.
	MaxDepth = 1 << 16

	// MaxValue is the largest value stored in a channel. The top of the curve
	// scales to 1<<16, which is clamped to this.
	MaxValue = math.MaxUint16
)

// Validation errors returned by [Build] and [Params.Validate].
var (
	ErrInvalidGamma = errors.New("invalid gamma")
	ErrInvalidDepth = errors.New("invalid depth")
	ErrOffsetRange  = errors.New("offset exceeds depth")
)

// Params configures a colour map.
type Params struct {
	Depth int     // entries per channel, between 2 and MaxDepth
	Gamma float64 // power-law exponent

	// Channel offsets. Entries at or below the offset are zero, and the ramp
	// starts after it. Each must be between 0 and Depth.
	Red, Green, Blue int

	// MinGamma overrides DefaultMinGamma if non-zero. It cannot be negative,
	// and a gamma of zero or less is always invalid.
	MinGamma float64
}

// Validate checks p without building anything.
func (p Params) Validate() error {
	minGamma := p.MinGamma
	if math.IsNaN(minGamma) || math.IsInf(minGamma, 0) || minGamma < 0 {
		return fmt.Errorf("%w threshold %v (must not be negative)", ErrInvalidGamma, minGamma)
	}
	if minGamma == 0 {
		minGamma = DefaultMinGamma
	}
	if math.IsNaN(p.Gamma) || math.IsInf(p.Gamma, 0) || p.Gamma <= 0 || p.Gamma < minGamma {
		return fmt.Errorf("%w %v (must be at least %v)", ErrInvalidGamma, p.Gamma, minGamma)
	}
	if p.Depth < 2 || p.Depth > MaxDepth {
		return fmt.Errorf("%w %d (must be between 2 and %d)", ErrInvalidDepth, p.Depth, MaxDepth)
	}
	for _, c := range [...]struct {
		name   string
		offset int
	}{
		{"red", p.Red},
		{"green", p.Green},
		{"blue", p.Blue},
	} {
		if c.offset < 0 || c.offset > p.Depth {
			return fmt.Errorf("%s %w: %d (depth %d)", c.name, ErrOffsetRange, c.offset, p.Depth)
		}
	}
	return nil
}

// Map is a colour map. The channel slices all have the same length.
type Map struct {
	Start            int
	Red, Green, Blue []uint16
}

// Len returns the number of entries per channel.
func (m *Map) Len() int {
	return len(m.Red)
}

// Equal reports whether m and o contain the same entries.
func (m *Map) Equal(o *Map) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Start == o.Start &&
		slices.Equal(m.Red, o.Red) &&
		slices.Equal(m.Green, o.Green) &&
		slices.Equal(m.Blue, o.Blue)
}

// Build validates p and computes a colour map with p.Depth entries per
// channel. Nothing is allocated if p is invalid.
func Build(p Params) (*Map, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m := &Map{
		Red:   make([]uint16, p.Depth),
		Green: make([]uint16, p.Depth),
		Blue:  make([]uint16, p.Depth),
	}
	Ramp(m.Red, p.Red, p.Gamma)
	Ramp(m.Green, p.Green, p.Gamma)
	Ramp(m.Blue, p.Blue, p.Gamma)
	return m, nil
}

// Ramp fills ch with a gamma curve starting after offset, normalised over
// len(ch)-1. It does not validate its arguments.
func Ramp(ch []uint16, offset int, gamma float64) {
	n := float64(len(ch) - 1)
	for index := range ch {
		shifted := max(index-offset, 0)
		v := math.Round(math.Pow(float64(shifted)/n, gamma) * (1 << 16))
		ch[index] = uint16(min(v, MaxValue))
	}
}
