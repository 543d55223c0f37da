package processor

import (
	"github.com/linuxmatters/colimiter/internal/meter"
	"github.com/linuxmatters/colimiter/internal/param"
)

// Instance is one colimiter "plugin instance": the threshold control and the
// peak meter, created once and shared between the audio goroutine and the
// observers (UI, MIDI, persistence) for as long as the instance lives.
type Instance struct {
	Threshold *param.Value
	Peak      *meter.Peak
	Meter     *meter.Reader
}

// NewInstance creates an instance with its threshold target at thresholdDB.
func NewInstance(thresholdDB float32) *Instance {
	threshold := param.NewValue(param.Threshold)
	threshold.Set(thresholdDB)
	threshold.Reset()

	peak := meter.NewPeak()

	return &Instance{
		Threshold: threshold,
		Peak:      peak,
		Meter:     meter.NewReader(peak),
	}
}

// NewColimiter creates the processing core for this instance at sampleRate.
func (in *Instance) NewColimiter(sampleRate float64) (*Colimiter, error) {
	return New(sampleRate, in.Threshold, in.Peak, in.Meter.Observation)
}
