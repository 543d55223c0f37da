// Package playback runs the colimiter in real time behind the system speaker.
//
// The speaker pulls samples on its own goroutine, which becomes the audio
// goroutine: Stream must not allocate or block. Everything else (threshold
// changes, meter reads) goes through the instance's atomics.
package playback

import (
	"github.com/gopxl/beep"

	"github.com/linuxmatters/colimiter/internal/processor"
)

// MaxChunk is the largest run of frames handed to the colimiter in one
// Process call. The speaker's buffer is split into chunks of this size so the
// meter updates several times per buffer.
const MaxChunk = 512

// Streamer wraps a beep.Streamer and colimits everything it produces.
// beep streams are always stereo; mono sources arrive with both sides equal.
type Streamer struct {
	src       beep.Streamer
	colimiter *processor.Colimiter

	planar [2][]float32
	block  [][]float32
}

// NewStreamer wraps src. chunk bounds the frames per Process call and
// defaults to MaxChunk when not positive.
func NewStreamer(src beep.Streamer, colimiter *processor.Colimiter, chunk int) *Streamer {
	if chunk <= 0 || chunk > MaxChunk {
		chunk = MaxChunk
	}

	s := &Streamer{
		src:       src,
		colimiter: colimiter,
		block:     make([][]float32, 2),
	}
	s.planar[0] = make([]float32, chunk)
	s.planar[1] = make([]float32, chunk)

	return s
}

// Stream fills samples from the source and colimits them in place.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.src.Stream(samples)

	chunk := len(s.planar[0])
	for from := 0; from < n; from += chunk {
		to := min(from+chunk, n)
		s.process(samples[from:to])
	}

	return n, ok
}

// Err propagates the source's error.
func (s *Streamer) Err() error {
	return s.src.Err()
}

func (s *Streamer) process(frames [][2]float64) {
	left := s.planar[0][:len(frames)]
	right := s.planar[1][:len(frames)]
	for i, f := range frames {
		left[i] = float32(f[0])
		right[i] = float32(f[1])
	}

	s.block[0] = left
	s.block[1] = right
	s.colimiter.Process(s.block)

	for i := range frames {
		frames[i][0] = float64(left[i])
		frames[i][1] = float64(right[i])
	}
}
