package param

import (
	"math"
	"sync/atomic"
)

// Value is the runtime state of one control. Set and Target may be called from
// any goroutine. Update, Next and Reset belong to the audio goroutine.
type Value struct {
	desc     Descriptor
	target   atomic.Uint32 // float32 bits
	smoother Smoother
}

// NewValue returns a value resting at the descriptor's default.
func NewValue(desc Descriptor) *Value {
	v := &Value{desc: desc}
	v.target.Store(math.Float32bits(desc.Default))
	v.smoother.Reset(desc.Default)
	return v
}

// Descriptor returns the static description of this control.
func (v *Value) Descriptor() Descriptor { return v.desc }

// Set clamps x to the range and publishes it as the new target. The audio
// goroutine picks it up on its next Update.
func (v *Value) Set(x float32) {
	v.target.Store(math.Float32bits(v.desc.Clamp(x)))
}

// SetNormalized sets the target from a 0..1 position.
func (v *Value) SetNormalized(n float32) {
	v.Set(v.desc.Denormalize(n))
}

// Nudge moves the target by delta, clamped to the range.
func (v *Value) Nudge(delta float32) {
	v.Set(v.Target() + delta)
}

// Target returns the latest published target.
func (v *Value) Target() float32 {
	return math.Float32frombits(v.target.Load())
}

// Update pulls the latest target into the smoother. When it changed, a new
// ramp starts from the current smoothed value.
func (v *Value) Update(sampleRate float32) {
	v.smoother.SetTarget(v.Target(), v.desc.RampSteps(sampleRate))
}

// Next advances the smoother one sample.
func (v *Value) Next() float32 {
	return v.smoother.Next()
}

// Smoothed returns the current smoothed value without advancing.
func (v *Value) Smoothed() float32 {
	return v.smoother.Current()
}

// IsSmoothing reports whether a ramp is in progress.
func (v *Value) IsSmoothing() bool {
	return v.smoother.IsSmoothing()
}

// Reset snaps the smoother to the current target, as hosts do when the
// sample rate changes or playback restarts.
func (v *Value) Reset() {
	v.smoother.Reset(v.Target())
}
