// Package level converts between decibels and linear amplitude.
//
// Both directions work in float32 because the audio path does. Anything at or
// below MinusInfinityDB is treated as silence.
package level

import "github.com/cwbudde/algo-dsp/dsp/core"

const (
	// MinusInfinityDB is the floor used for silence in dB readouts.
	MinusInfinityDB float32 = -100.0

	// MinusInfinityGain is the linear gain of MinusInfinityDB.
	MinusInfinityGain float32 = 1e-5
)

// DBToGain converts a dB value to linear gain (20*log10 convention).
// Values at or below MinusInfinityDB map to exactly 0.
func DBToGain(db float32) float32 {
	if db <= MinusInfinityDB {
		return 0
	}
	return float32(core.DBToLinear(float64(db)))
}

// GainToDB converts linear gain to dB, clamped to MinusInfinityDB.
// Zero, negative and NaN gains all report the floor.
func GainToDB(gain float32) float32 {
	if !(gain > MinusInfinityGain) {
		return MinusInfinityDB
	}
	return float32(core.LinearToDB(float64(gain)))
}

// IsSilent reports whether a dB value sits on the silence floor.
func IsSilent(db float32) bool {
	return db <= MinusInfinityDB
}
