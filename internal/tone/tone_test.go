package tone

import (
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/colimiter/internal/audio"
	"github.com/linuxmatters/colimiter/internal/level"
)

func silentOptions() Options {
	opts := DefaultOptions()
	opts.ToneDB = level.MinusInfinityDB
	opts.HumDB = level.MinusInfinityDB
	opts.NoiseDB = level.MinusInfinityDB
	return opts
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	for name, modify := range map[string]func(*Options){
		"zero duration":    func(o *Options) { o.Duration = 0 },
		"zero sample rate": func(o *Options) { o.SampleRate = 0 },
		"surround":         func(o *Options) { o.Channels = 6 },
		"above nyquist":    func(o *Options) { o.ToneFreq = 30000 },
	} {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			modify(&opts)
			assert.Error(t, opts.Validate())
		})
	}
}

func TestToneOnly(t *testing.T) {
	opts := silentOptions()
	opts.SampleRate = 48000
	opts.ToneFreq = 1000
	opts.ToneDB = -6

	g, err := NewGenerator(opts)
	require.NoError(t, err)

	block := audio.NewBlock(2, 48)
	g.Fill(block)

	amp := float64(level.DBToGain(-6))
	assert.InDelta(t, 0, block[0][0], 1e-7)
	assert.InDelta(t, amp, block[0][12], 1e-6) // quarter period
	assert.InDelta(t, -amp, block[0][36], 1e-6)
	assert.Equal(t, block[0], block[1])
}

func TestHumHarmonics(t *testing.T) {
	opts := silentOptions()
	opts.SampleRate = 1000
	opts.HumFreq = 60
	opts.HumHarmonics = 10
	opts.HumDB = -20

	g, err := NewGenerator(opts)
	require.NoError(t, err)

	// Partials at or above 500 Hz are dropped.
	assert.Equal(t, []float64{60, 120, 180, 240, 300, 360, 420, 480}, g.HumFrequencies())
}

func TestHumOff(t *testing.T) {
	opts := silentOptions()
	opts.HumFreq = 50

	g, err := NewGenerator(opts)
	require.NoError(t, err)
	assert.Empty(t, g.HumFrequencies())

	block := audio.NewBlock(1, 64)
	g.Fill(block)
	for _, s := range block[0] {
		assert.Zero(t, s)
	}
}

func TestNoiseIsDeterministic(t *testing.T) {
	opts := silentOptions()
	opts.NoiseDB = -20

	render := func(seed uint32) []float32 {
		o := opts
		o.Seed = seed
		g, err := NewGenerator(o)
		require.NoError(t, err)
		block := audio.NewBlock(1, 256)
		g.Fill(block)
		return block[0]
	}

	a, b := render(7), render(7)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, render(8))

	amp := float64(level.DBToGain(-20))
	for _, s := range a {
		assert.LessOrEqual(t, math.Abs(float64(s)), amp+1e-6)
	}
}

func TestNoiseFollowsSeededPCG(t *testing.T) {
	opts := silentOptions()
	opts.NoiseDB = -20
	opts.Seed = 42

	g, err := NewGenerator(opts)
	require.NoError(t, err)
	block := audio.NewBlock(1, 64)
	g.Fill(block)

	amp := float64(level.DBToGain(-20))
	r := rand.New(rand.NewPCG(42, 0))
	for i, s := range block[0] {
		want := float32(amp * (r.Float64()*2 - 1))
		assert.Equal(t, want, s, "sample %d", i)
	}
}

func TestStereoNoiseDiffers(t *testing.T) {
	opts := silentOptions()
	opts.NoiseDB = -30

	g, err := NewGenerator(opts)
	require.NoError(t, err)

	block := audio.NewBlock(2, 32)
	g.Fill(block)
	assert.NotEqual(t, block[0], block[1])
}

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	opts := DefaultOptions()
	opts.Duration = 250 * time.Millisecond
	opts.SampleRate = 44100
	opts.Channels = 1
	opts.HumFreq = 50

	frames, err := Generate(path, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(11025), frames)

	r, meta, err := audio.OpenAudioFile(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 44100, meta.SampleRate)
	assert.Equal(t, 1, meta.Channels)
	assert.Equal(t, 24, meta.BitDepth)

	block := audio.NewBlock(1, 20000)
	n, err := r.ReadBlock(block)
	require.NoError(t, err)
	assert.Equal(t, 11025, n)

	var peak float64
	for _, s := range block[0][:n] {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	// Tone at -12 dBFS dominates.
	assert.InDelta(t, float64(level.DBToGain(-12)), peak, 0.03)
}

func TestGenerateInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Channels = 3

	_, err := Generate(filepath.Join(t.TempDir(), "x.wav"), opts)
	assert.Error(t, err)
}
