package processor

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/colimiter/internal/audio"
)

// TestAudioOptions configures the synthetic audio to generate
type TestAudioOptions struct {
	DurationSecs float64 // Total duration in seconds (default: 1.0)
	SampleRate   int     // Sample rate (default: 48000)
	Channels     int     // Channel count (default: 1)
	BitDepth     int     // PCM bit depth (default: 24)
	ToneFreq     float64 // Sine wave frequency in Hz (0 = no tone)
	ToneLevel    float64 // Tone level in dBFS (e.g., -6.0)
	NoiseLevel   float64 // White noise level in dBFS (0 = no noise, -60 = quiet noise)
}

// generateTestAudio creates a synthetic WAV file in a temporary directory and
// returns its path. The directory is removed when the test ends.
func generateTestAudio(t *testing.T, opts TestAudioOptions) string {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 48000
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 1.0
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	if opts.BitDepth == 0 {
		opts.BitDepth = 24
	}

	path := filepath.Join(t.TempDir(), "test.wav")
	w, err := audio.CreateAudioFile(path, opts.SampleRate, opts.BitDepth, opts.Channels)
	if err != nil {
		t.Fatalf("failed to create test audio: %v", err)
	}

	toneAmp := 0.0
	if opts.ToneFreq > 0 && opts.ToneLevel < 0 {
		toneAmp = math.Pow(10.0, opts.ToneLevel/20.0)
	}
	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0)
	}

	// Simple LCG for deterministic noise
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	totalFrames := int(opts.DurationSecs * float64(opts.SampleRate))
	block := audio.NewBlock(opts.Channels, 1024)

	for written := 0; written < totalFrames; {
		n := min(1024, totalFrames-written)
		for i := 0; i < n; i++ {
			phase := 2 * math.Pi * opts.ToneFreq * float64(written+i) / float64(opts.SampleRate)
			tone := toneAmp * math.Sin(phase)
			for ch := range block {
				block[ch][i] = float32(tone + noiseAmp*nextRandom())
			}
		}
		if err := w.WriteBlock(block, n); err != nil {
			t.Fatalf("failed to write test audio: %v", err)
		}
		written += n
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close test audio: %v", err)
	}

	return path
}

// readTestAudio loads a whole WAV file as planar channels
func readTestAudio(t *testing.T, path string) ([][]float32, *audio.Metadata) {
	t.Helper()

	r, meta, err := audio.OpenAudioFile(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer r.Close()

	out := make([][]float32, meta.Channels)
	block := audio.NewBlock(meta.Channels, 4096)
	for {
		n, err := r.ReadBlock(block)
		if err != nil {
			t.Fatalf("failed to read %s: %v", path, err)
		}
		if n == 0 {
			break
		}
		for ch := range out {
			out[ch] = append(out[ch], block[ch][:n]...)
		}
	}

	return out, meta
}
