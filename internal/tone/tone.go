// Package tone synthesises test signals for the colimiter: a sine tone over
// mains hum and white noise, the mix a close-miked voice recording tends to
// carry.
package tone

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/linuxmatters/colimiter/internal/audio"
	"github.com/linuxmatters/colimiter/internal/level"
	"github.com/linuxmatters/colimiter/internal/mains"
)

// Options configures the generated signal. Levels are peak dBFS; anything at
// or below level.MinusInfinityDB switches that component off.
type Options struct {
	Duration   time.Duration
	SampleRate int
	Channels   int
	BitDepth   int

	ToneFreq float64 // Sine frequency in Hz
	ToneDB   float32

	HumFreq      float64 // Mains fundamental in Hz (0 = detect locally)
	HumHarmonics int     // Number of hum partials, each falling as 1/k
	HumDB        float32

	NoiseDB float32
	Seed    uint32 // Noise seed; the same seed gives the same file
}

// DefaultOptions returns a 5 second stereo test signal at 48 kHz
func DefaultOptions() Options {
	return Options{
		Duration:     5 * time.Second,
		SampleRate:   48000,
		Channels:     2,
		BitDepth:     24,
		ToneFreq:     440,
		ToneDB:       -12,
		HumHarmonics: 4,
		HumDB:        -40,
		NoiseDB:      -60,
		Seed:         12345,
	}
}

// Validate checks the options can be rendered
func (o Options) Validate() error {
	if o.Duration <= 0 {
		return fmt.Errorf("duration must be positive: %s", o.Duration)
	}
	if o.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %d", o.SampleRate)
	}
	if o.Channels != 1 && o.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2: %d", o.Channels)
	}
	if nyquist := float64(o.SampleRate) / 2; o.ToneFreq < 0 || o.ToneFreq >= nyquist {
		return fmt.Errorf("tone frequency must be in [0, %.0f) Hz: %.1f", nyquist, o.ToneFreq)
	}
	return nil
}

// Generator produces the signal block by block
type Generator struct {
	sampleRate float64
	frame      int64

	toneFreq float64
	toneAmp  float64

	humFreqs []float64
	humAmps  []float64

	noiseAmp float64
	rng      *rand.Rand
}

// NewGenerator prepares a generator. When opts.HumFreq is 0 the local mains
// frequency is detected from the system timezone.
func NewGenerator(opts Options) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		sampleRate: float64(opts.SampleRate),
		toneFreq:   opts.ToneFreq,
		toneAmp:    float64(level.DBToGain(opts.ToneDB)),
		noiseAmp:   float64(level.DBToGain(opts.NoiseDB)),
		rng:        newNoiseSource(opts.Seed),
	}
	if opts.ToneFreq == 0 {
		g.toneAmp = 0
	}

	if humAmp := float64(level.DBToGain(opts.HumDB)); humAmp > 0 && opts.HumHarmonics > 0 {
		fundamental := opts.HumFreq
		if fundamental <= 0 {
			fundamental = float64(mains.Frequency())
		}
		for k, f := range mains.Harmonics(fundamental, opts.HumHarmonics) {
			if f >= g.sampleRate/2 {
				break
			}
			g.humFreqs = append(g.humFreqs, f)
			g.humAmps = append(g.humAmps, humAmp/float64(k+1))
		}
	}

	return g, nil
}

// HumFrequencies returns the hum partials in use
func (g *Generator) HumFrequencies() []float64 { return g.humFreqs }

// Fill writes the next len(block[0]) frames to every channel of block. All
// channels carry the same tone and hum; each gets its own noise.
func (g *Generator) Fill(block [][]float32) {
	if len(block) == 0 {
		return
	}

	for i := range block[0] {
		t := float64(g.frame) / g.sampleRate

		var s float64
		if g.toneAmp > 0 {
			s += g.toneAmp * math.Sin(2*math.Pi*g.toneFreq*t)
		}
		for k, f := range g.humFreqs {
			s += g.humAmps[k] * math.Sin(2*math.Pi*f*t)
		}

		for ch := range block {
			v := s
			if g.noiseAmp > 0 {
				v += g.noiseAmp * g.nextRandom()
			}
			block[ch][i] = float32(v)
		}
		g.frame++
	}
}

// newNoiseSource seeds a PCG stream; PCG output is fixed for a given seed, so
// the same seed always reproduces the same file.
func newNoiseSource(seed uint32) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// nextRandom returns uniform noise in [-1, 1)
func (g *Generator) nextRandom() float64 {
	return g.rng.Float64()*2 - 1
}

// Generate renders opts to a WAV file at path and returns the number of
// frames written
func Generate(path string, opts Options) (int64, error) {
	g, err := NewGenerator(opts)
	if err != nil {
		return 0, err
	}

	w, err := audio.CreateAudioFile(path, opts.SampleRate, opts.BitDepth, opts.Channels)
	if err != nil {
		return 0, err
	}

	const blockSize = 4096
	total := int64(opts.Duration.Seconds()*float64(opts.SampleRate) + 0.5)
	block := audio.NewBlock(opts.Channels, blockSize)

	var written int64
	for written < total {
		n := int(min(int64(blockSize), total-written))
		view := block
		if n < blockSize {
			view = make([][]float32, len(block))
			for ch := range block {
				view[ch] = block[ch][:n]
			}
		}

		g.Fill(view)
		if err := w.WriteBlock(view, n); err != nil {
			_ = w.Close()
			return written, err
		}
		written += int64(n)
	}

	return written, w.Close()
}
