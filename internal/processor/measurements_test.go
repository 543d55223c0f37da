package processor

import (
	"math"
	"testing"
)

func TestMeasurerAdd(t *testing.T) {
	var m Measurements
	ms := newMeasurer(4)

	block := [][]float32{
		{0.5, -1, 0, 0.9},
		{0.25, 0, 0, 0.9},
	}

	// Only the first three frames count.
	peak := ms.add(&m, block, 3)
	if peak != 1 {
		t.Errorf("block peak = %v, want 1", peak)
	}

	if len(m.Channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(m.Channels))
	}

	left := m.Channels[0]
	if left.Peak != 1 || left.Zeroed != 1 || left.Frames != 3 {
		t.Errorf("left = %+v", left)
	}
	if math.Abs(left.SumSquares-1.25) > 1e-9 {
		t.Errorf("left SumSquares = %v, want 1.25", left.SumSquares)
	}
	if math.Abs(left.RMS()-math.Sqrt(1.25/3)) > 1e-9 {
		t.Errorf("left RMS = %v", left.RMS())
	}

	right := m.Channels[1]
	if right.Peak != 0.25 || right.Zeroed != 2 {
		t.Errorf("right = %+v", right)
	}
	if math.Abs(right.ZeroedRatio()-2.0/3) > 1e-9 {
		t.Errorf("right ZeroedRatio = %v", right.ZeroedRatio())
	}

	if m.Peak() != 1 {
		t.Errorf("Peak() = %v, want 1", m.Peak())
	}
}

func TestMeasurerAccumulates(t *testing.T) {
	var m Measurements
	ms := newMeasurer(2)

	ms.add(&m, [][]float32{{0.1, 0.2}}, 2)
	peak := ms.add(&m, [][]float32{{-0.05, 0}}, 2)

	if math.Abs(peak-0.05) > 1e-7 {
		t.Errorf("second block peak = %v, want 0.05", peak)
	}
	if math.Abs(m.Channels[0].Peak-0.2) > 1e-7 {
		t.Errorf("running peak = %v, want 0.2", m.Channels[0].Peak)
	}
	if m.Channels[0].Frames != 4 || m.Channels[0].Zeroed != 1 {
		t.Errorf("stats = %+v", m.Channels[0])
	}
}

func TestMeasurerGrowsScratch(t *testing.T) {
	var m Measurements
	ms := newMeasurer(1)

	ms.add(&m, [][]float32{{0.1, 0.2, 0.3}}, 3)
	if m.Channels[0].Frames != 3 {
		t.Errorf("Frames = %d, want 3", m.Channels[0].Frames)
	}
}

func TestEmptyStats(t *testing.T) {
	var s ChannelStats
	if s.RMS() != 0 || s.ZeroedRatio() != 0 {
		t.Errorf("empty stats RMS=%v ZeroedRatio=%v, want 0", s.RMS(), s.ZeroedRatio())
	}

	var m Measurements
	if m.Peak() != 0 {
		t.Errorf("empty Peak() = %v", m.Peak())
	}
}

func TestMeasurementsZeroedRatio(t *testing.T) {
	var m Measurements
	if m.ZeroedRatio() != 0 {
		t.Errorf("empty ZeroedRatio() = %v", m.ZeroedRatio())
	}

	ms := newMeasurer(4)
	ms.add(&m, [][]float32{{0, 0, 0.1, 0.2}, {0, 0.3, 0.1, 0.2}}, 4)

	if got := m.ZeroedRatio(); got != 3.0/8.0 {
		t.Errorf("ZeroedRatio() = %v, want 0.375", got)
	}
}
