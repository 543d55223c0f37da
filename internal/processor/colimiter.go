package processor

import (
	"fmt"
	"math"

	"github.com/linuxmatters/colimiter/internal/level"
	"github.com/linuxmatters/colimiter/internal/meter"
	"github.com/linuxmatters/colimiter/internal/param"
)

// Colimiter subtracts the threshold from every sample louder than it and
// silences everything else:
//
//	|s| > t  →  s - sign(s)*t
//	|s| ≤ t  →  0
//
// Process is meant for the audio goroutine: it does not allocate, lock or
// block. The threshold target may be changed concurrently through the
// param.Value; the peak register and observation flag are shared with the
// meter's reader.
type Colimiter struct {
	threshold  *param.Value
	peak       *meter.Peak
	observed   *meter.Observation
	sampleRate float32

	// Gain for lastDB, reused while the threshold is not ramping.
	lastDB   float32
	lastGain float32
}

// New creates a colimiter at sampleRate. threshold, peak and observed are
// shared handles created once per instance; pass the same peak and observed
// to the meter's reader.
func New(sampleRate float64, threshold *param.Value, peak *meter.Peak, observed *meter.Observation) (*Colimiter, error) {
	if threshold == nil || peak == nil || observed == nil {
		return nil, fmt.Errorf("colimiter requires threshold, peak and observation handles")
	}

	c := &Colimiter{
		threshold: threshold,
		peak:      peak,
		observed:  observed,
	}
	if err := c.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}

	return c, nil
}

// SetSampleRate changes the processing rate and snaps the threshold smoother
// to its target.
func (c *Colimiter) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("colimiter sample rate must be positive and finite: %f", sampleRate)
	}

	c.sampleRate = float32(sampleRate)
	c.Reset()

	return nil
}

// Threshold returns the shared threshold control.
func (c *Colimiter) Threshold() *param.Value { return c.threshold }

// Reset drops any ramp in progress.
func (c *Colimiter) Reset() {
	c.threshold.Reset()
	c.lastDB = c.threshold.Smoothed()
	c.lastGain = level.DBToGain(c.lastDB)
}

// ProcessTarget sets the threshold target and processes block.
func (c *Colimiter) ProcessTarget(block [][]float32, targetDB float32) {
	c.threshold.Set(targetDB)
	c.Process(block)
}

// Process transforms block in place. block holds one slice per channel; the
// frame count is the shortest channel. The block peak, measured on the input,
// is published only while the meter is observed.
func (c *Colimiter) Process(block [][]float32) {
	frames := frameCount(block)
	if frames == 0 {
		return
	}

	c.threshold.Update(c.sampleRate)

	var peak float32
	for i := 0; i < frames; i++ {
		t := c.gain(c.threshold.Next())

		for _, ch := range block {
			s := ch[i]
			ch[i] = Colimit(s, t)

			if s < 0 {
				s = -s
			}
			if s > peak {
				peak = s
			}
		}
	}

	if c.observed.Observed() {
		c.peak.Publish(peak)
	}
}

// Colimit applies the rule to one sample for a linear threshold t >= 0.
// The result's magnitude is exactly |s|-t, or 0 when |s| <= t.
func Colimit(s, t float32) float32 {
	switch {
	case s > t:
		return s - t
	case s < -t:
		return s + t
	}
	return 0
}

// gain converts a smoothed threshold to linear, skipping the pow while the
// threshold holds still.
func (c *Colimiter) gain(db float32) float32 {
	if db != c.lastDB {
		c.lastDB = db
		c.lastGain = level.DBToGain(db)
	}
	return c.lastGain
}

func frameCount(block [][]float32) int {
	if len(block) == 0 {
		return 0
	}

	n := len(block[0])
	for _, ch := range block[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}
