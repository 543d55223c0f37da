package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/linuxmatters/colimiter/internal/cli"
	"github.com/linuxmatters/colimiter/internal/mains"
	"github.com/linuxmatters/colimiter/internal/tone"
)

// ToneCmd writes a synthetic test file
type ToneCmd struct {
	Duration     time.Duration `short:"d" help:"Length of the signal" default:"5s"`
	SampleRate   int           `name:"sample-rate" help:"Sample rate in Hz" default:"48000"`
	Channels     int           `help:"1 (mono) or 2 (stereo)" default:"2"`
	BitDepth     int           `name:"bit-depth" help:"16, 24 or 32" default:"24"`
	Freq         float64       `help:"Tone frequency in Hz (0 for no tone)" default:"440"`
	Level        float32       `help:"Tone peak level in dBFS" default:"-12"`
	Hum          float64       `help:"Mains hum frequency in Hz (0 to detect from the local timezone)" default:"0"`
	HumHarmonics int           `name:"hum-harmonics" help:"Number of hum partials" default:"4"`
	HumLevel     float32       `name:"hum-level" help:"Hum peak level in dBFS" default:"-40"`
	Noise        float32       `help:"Noise peak level in dBFS" default:"-60"`
	Seed         uint32        `help:"Noise seed" default:"12345"`
	Output       string        `arg:"" name:"output" help:"WAV file to write" type:"path"`
}

// Run renders the signal and prints what was written
func (c *ToneCmd) Run(g *Globals) error {
	opts := tone.Options{
		Duration:     c.Duration,
		SampleRate:   c.SampleRate,
		Channels:     c.Channels,
		BitDepth:     c.BitDepth,
		ToneFreq:     c.Freq,
		ToneDB:       c.Level,
		HumFreq:      c.Hum,
		HumHarmonics: c.HumHarmonics,
		HumDB:        c.HumLevel,
		NoiseDB:      c.Noise,
		Seed:         c.Seed,
	}

	hum := strconv.FormatFloat(c.Hum, 'f', -1, 64) + " Hz"
	if c.Hum == 0 {
		supply := mains.Detect()
		opts.HumFreq = float64(supply.Frequency)
		hum = fmt.Sprintf("%d Hz (%s)", supply.Frequency, describeSupply(supply))
	}
	g.debugLog.Printf("[TONE] %+v", opts)

	frames, err := tone.Generate(c.Output, opts)
	if err != nil {
		return err
	}

	cli.PrintKV("Output", c.Output)
	cli.PrintKV("Frames", strconv.FormatInt(frames, 10))
	cli.PrintKV("Tone", fmt.Sprintf("%.1f Hz at %.1f dBFS", c.Freq, c.Level))
	cli.PrintKV("Hum", hum)
	return nil
}

// describeSupply names where the mains frequency came from
func describeSupply(s mains.Supply) string {
	switch {
	case s.Timezone == "":
		return "location unknown"
	case s.Country == "":
		return s.Timezone
	default:
		return s.Timezone + ", " + s.Country
	}
}
