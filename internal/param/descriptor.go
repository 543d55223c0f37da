// Package param describes the colimiter's user-facing controls and smooths
// their runtime values on the audio goroutine.
//
// A control is split in two: an immutable Descriptor (range, default, unit,
// display precision, ramp time) and a mutable Value that owns the current
// target and the smoothing state. Hosts change a Value with Set from any
// goroutine; the processor pulls the change in with Update at block start.
package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Descriptor is the static description of a linear float control.
type Descriptor struct {
	ID        string  // Stable identifier used for persistence
	Name      string  // Display name
	Unit      string  // Display unit suffix, including any leading space
	Min       float32 // Inclusive lower bound
	Max       float32 // Inclusive upper bound
	Default   float32 // Value at construction and after Reset
	Precision int     // Decimal digits shown by Format
	RampMs    float32 // Linear smoothing time in milliseconds
}

// Threshold is the colimiter's only control.
var Threshold = Descriptor{
	ID:        "thresh",
	Name:      "Threshold",
	Unit:      " dB",
	Min:       -90.0,
	Max:       20.0,
	Default:   -45.0,
	Precision: 2,
	RampMs:    25.0,
}

// Clamp limits v to the descriptor's range. NaN maps to the default.
func (d Descriptor) Clamp(v float32) float32 {
	switch {
	case v != v:
		return d.Default
	case v < d.Min:
		return d.Min
	case v > d.Max:
		return d.Max
	}
	return v
}

// Normalize maps a plain value onto 0..1 using the linear range.
func (d Descriptor) Normalize(v float32) float32 {
	if d.Max == d.Min {
		return 0
	}
	return (d.Clamp(v) - d.Min) / (d.Max - d.Min)
}

// Denormalize maps 0..1 back onto the plain range.
func (d Descriptor) Denormalize(n float32) float32 {
	if n < 0 {
		n = 0
	} else if n > 1 {
		n = 1
	}
	return d.Clamp(d.Min + n*(d.Max-d.Min))
}

// Format renders v rounded to the descriptor's precision, with unit.
// Example: -45 → "-45.00 dB".
func (d Descriptor) Format(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', d.Precision, 32) + d.Unit
}

// Parse reads a value typed by a user. The unit suffix is optional and the
// result is clamped to the range.
func (d Descriptor) Parse(s string) (float32, error) {
	text := strings.TrimSpace(s)
	if unit := strings.TrimSpace(d.Unit); unit != "" {
		text = strings.TrimSpace(strings.TrimSuffix(text, unit))
	}

	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", strings.ToLower(d.Name), s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s value %q: not finite", strings.ToLower(d.Name), s)
	}

	return d.Clamp(float32(v)), nil
}

// RampSteps returns the number of samples a full ramp takes at sampleRate.
func (d Descriptor) RampSteps(sampleRate float32) int {
	if sampleRate <= 0 || d.RampMs <= 0 {
		return 0
	}
	return int(math.Round(float64(sampleRate) * float64(d.RampMs) / 1000.0))
}
