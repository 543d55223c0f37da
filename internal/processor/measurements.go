package processor

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// ChannelStats accumulates level statistics for one channel
type ChannelStats struct {
	Peak       float64 // Largest absolute sample
	SumSquares float64 // Sum of squared samples
	Zeroed     int64   // Samples that are exactly zero
	Frames     int64   // Samples seen
}

// RMS returns the root mean square level (linear)
func (s ChannelStats) RMS() float64 {
	if s.Frames == 0 {
		return 0
	}
	return math.Sqrt(s.SumSquares / float64(s.Frames))
}

// ZeroedRatio returns the fraction of samples that are exactly zero
func (s ChannelStats) ZeroedRatio() float64 {
	if s.Frames == 0 {
		return 0
	}
	return float64(s.Zeroed) / float64(s.Frames)
}

// Measurements holds per-channel statistics for one side of the processor
// (input or output)
type Measurements struct {
	Channels []ChannelStats
}

// Peak returns the largest peak across channels (linear)
func (m *Measurements) Peak() float64 {
	var peak float64
	for _, ch := range m.Channels {
		peak = math.Max(peak, ch.Peak)
	}
	return peak
}

// ZeroedRatio returns the fraction of zero samples across all channels
func (m *Measurements) ZeroedRatio() float64 {
	var zeroed, frames int64
	for _, ch := range m.Channels {
		zeroed += ch.Zeroed
		frames += ch.Frames
	}
	if frames == 0 {
		return 0
	}
	return float64(zeroed) / float64(frames)
}

// measurer converts planar float32 blocks to a float64 scratch buffer and
// folds them into Measurements. It runs on the host side of Process.
type measurer struct {
	scratch []float64
}

func newMeasurer(blockSize int) *measurer {
	return &measurer{scratch: make([]float64, blockSize)}
}

// add folds the first frames of block into m and returns the block peak
func (ms *measurer) add(m *Measurements, block [][]float32, frames int) float64 {
	if len(m.Channels) < len(block) {
		m.Channels = append(m.Channels, make([]ChannelStats, len(block)-len(m.Channels))...)
	}
	if cap(ms.scratch) < frames {
		ms.scratch = make([]float64, frames)
	}
	x := ms.scratch[:frames]

	var blockPeak float64
	for ch := range block {
		var zeroed int64
		for i, s := range block[ch][:frames] {
			x[i] = float64(s)
			if s == 0 {
				zeroed++
			}
		}

		peak := vecmath.MaxAbs(x)
		stats := &m.Channels[ch]
		stats.Peak = math.Max(stats.Peak, peak)
		stats.SumSquares += vecmath.DotProduct(x, x)
		stats.Zeroed += zeroed
		stats.Frames += int64(frames)

		blockPeak = math.Max(blockPeak, peak)
	}

	return blockPeak
}
