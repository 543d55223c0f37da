package param

// Smoother ramps linearly from its current value to a target over a fixed
// number of samples. It is not safe for concurrent use; the audio goroutine
// owns it.
type Smoother struct {
	current float32
	target  float32

	// The ramp is evaluated as start + step*done rather than accumulated,
	// so rounding cannot drift across a long ramp.
	start     float64
	step      float64
	steps     int
	stepsLeft int
}

// NewSmoother returns a smoother resting at value.
func NewSmoother(value float32) *Smoother {
	s := &Smoother{}
	s.Reset(value)
	return s
}

// Reset jumps to value immediately, cancelling any ramp in progress.
func (s *Smoother) Reset(value float32) {
	s.current = value
	s.target = value
	s.start = float64(value)
	s.step = 0
	s.steps = 0
	s.stepsLeft = 0
}

// SetTarget starts a ramp of the given length from the current value to
// target. A target equal to the one already set leaves the ramp untouched,
// so hosts may call it every block. steps <= 0 jumps straight to target.
func (s *Smoother) SetTarget(target float32, steps int) {
	if target == s.target {
		return
	}

	s.target = target
	if steps <= 0 {
		s.Reset(target)
		return
	}

	s.start = float64(s.current)
	s.step = (float64(target) - s.start) / float64(steps)
	s.steps = steps
	s.stepsLeft = steps
}

// Next advances one sample and returns the smoothed value.
func (s *Smoother) Next() float32 {
	if s.stepsLeft == 0 {
		return s.current
	}

	s.stepsLeft--
	if s.stepsLeft == 0 {
		s.current = s.target
		return s.current
	}

	v := float32(s.start + s.step*float64(s.steps-s.stepsLeft))
	if (s.step > 0 && v > s.target) || (s.step < 0 && v < s.target) {
		v = s.target
	}
	s.current = v

	return s.current
}

// NextBlock fills out with successive smoothed values.
func (s *Smoother) NextBlock(out []float32) {
	for i := range out {
		out[i] = s.Next()
	}
}

// Current returns the most recent smoothed value without advancing.
func (s *Smoother) Current() float32 { return s.current }

// Target returns the value being ramped towards.
func (s *Smoother) Target() float32 { return s.target }

// StepsLeft returns how many samples remain until the target is reached.
func (s *Smoother) StepsLeft() int { return s.stepsLeft }

// IsSmoothing reports whether a ramp is in progress.
func (s *Smoother) IsSmoothing() bool { return s.stepsLeft > 0 }
