// Package processor implements the colimiter and renders audio files through it
package processor

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/linuxmatters/colimiter/internal/audio"
	"github.com/linuxmatters/colimiter/internal/level"
)

// ProgressFunc receives rendering progress (0.0 to 1.0) and the threshold
// target currently in effect, in dB
type ProgressFunc func(progress float64, thresholdDB float32)

// ProcessingResult contains the results of rendering one file
type ProcessingResult struct {
	OutputPath string
	SampleRate int
	Channels   int
	Frames     int64
	Blocks     int
	Elapsed    time.Duration

	Input  Measurements
	Output Measurements

	// Input peak of every processed block, in dBFS
	BlockPeaksDB []float64

	// Threshold target when rendering finished
	FinalThresholdDB float32

	Config *Config
}

// ProcessAudio renders inputPath through the instance's colimiter block by
// block, exactly as a real-time host would, and writes <name>-processed.wav
// next to the input. The goroutine calling ProcessAudio is the audio
// goroutine for the duration of the call.
//
// If progressCallback is not nil, it is called after every block.
func ProcessAudio(inputPath string, config *Config, inst *Instance, progressCallback ProgressFunc) (*ProcessingResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	reader, metadata, err := audio.OpenAudioFile(inputPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if !slices.Contains(SupportedChannels, metadata.Channels) {
		return nil, fmt.Errorf("unsupported channel layout: %d channels (want mono or stereo)", metadata.Channels)
	}

	outputPath := generateOutputPath(inputPath, config.OutputSuffix)
	writer, err := audio.CreateAudioFile(outputPath, metadata.SampleRate, metadata.BitDepth, metadata.Channels)
	if err != nil {
		return nil, err
	}

	result, err := render(reader, writer, metadata, config, inst, progressCallback)
	if closeErr := writer.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}

	result.OutputPath = outputPath
	return result, nil
}

// render drives the colimiter over every block of reader, splitting blocks at
// automation points so each change lands on its exact frame
func render(reader *audio.Reader, writer *audio.Writer, metadata *audio.Metadata, config *Config, inst *Instance, progressCallback ProgressFunc) (*ProcessingResult, error) {
	start := time.Now()

	// An automation point at frame 0 is the starting threshold; otherwise
	// the file starts from the configured one.
	startDB := config.ThresholdDB
	if len(config.Automation) > 0 && config.Automation[0].Frame(metadata.SampleRate) == 0 {
		startDB = config.Automation[0].ThresholdDB
	}
	inst.Threshold.Set(startDB)

	colimiter, err := inst.NewColimiter(float64(metadata.SampleRate))
	if err != nil {
		return nil, err
	}

	block := audio.NewBlock(metadata.Channels, config.BlockSize)
	view := make([][]float32, metadata.Channels)
	measure := newMeasurer(config.BlockSize)
	automation := newAutomationCursor(config.Automation, metadata.SampleRate)

	result := &ProcessingResult{
		SampleRate: metadata.SampleRate,
		Channels:   metadata.Channels,
		Config:     config,
	}

	for {
		n, err := reader.ReadBlock(block)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}

		blockPeak := measure.add(&result.Input, block, n)
		result.BlockPeaksDB = append(result.BlockPeaksDB, float64(level.GainToDB(float32(blockPeak))))

		automation.process(colimiter, block, view, result.Frames, n)

		measure.add(&result.Output, block, n)
		if err := writer.WriteBlock(block, n); err != nil {
			return nil, err
		}

		result.Frames += int64(n)
		result.Blocks++

		if progressCallback != nil && metadata.TotalFrames > 0 {
			progress := float64(result.Frames) / float64(metadata.TotalFrames)
			if progress > 1.0 {
				progress = 1.0
			}
			progressCallback(progress, inst.Threshold.Target())
		}
	}

	if progressCallback != nil {
		progressCallback(1.0, inst.Threshold.Target())
	}

	result.FinalThresholdDB = inst.Threshold.Target()
	result.Elapsed = time.Since(start)

	return result, nil
}

// automationCursor walks the automation points alongside the rendered frames
type automationCursor struct {
	frames []int64
	values []float32
	next   int
}

func newAutomationCursor(points []AutomationPoint, sampleRate int) *automationCursor {
	c := &automationCursor{
		frames: make([]int64, len(points)),
		values: make([]float32, len(points)),
	}
	for i, p := range points {
		c.frames[i] = p.Frame(sampleRate)
		c.values[i] = p.ThresholdDB
	}
	return c
}

// process runs the first n frames of block, which start at file frame
// offset, through colimiter. Points falling inside the block split it so
// the new target takes effect on its own frame.
func (c *automationCursor) process(colimiter *Colimiter, block, view [][]float32, offset int64, n int) {
	from := 0
	for c.next < len(c.frames) && c.frames[c.next] < offset+int64(n) {
		at := int(c.frames[c.next] - offset)
		if at < 0 {
			at = 0
		}
		if at > from {
			colimiter.Process(subBlock(view, block, from, at))
			from = at
		}
		colimiter.Threshold().Set(c.values[c.next])
		c.next++
	}

	if from < n {
		colimiter.Process(subBlock(view, block, from, n))
	}
}

// subBlock points view at frames [from, to) of every channel in block
func subBlock(view, block [][]float32, from, to int) [][]float32 {
	for ch := range block {
		view[ch] = block[ch][from:to]
	}
	return view
}

// generateOutputPath creates the output filename from the input filename
// Example: /path/to/audio.wav → /path/to/audio-processed.wav
func generateOutputPath(inputPath, suffix string) string {
	dir := filepath.Dir(inputPath)
	filename := filepath.Base(inputPath)
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	return filepath.Join(dir, nameWithoutExt+suffix+".wav")
}
