package audio

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag
const wavFormatPCM = 1

// Writer encodes planar float32 blocks to a PCM WAV file
type Writer struct {
	file    *os.File
	encoder *wav.Encoder
	intBuf  *goaudio.IntBuffer
	scale   float64
}

// CreateAudioFile creates a PCM WAV file with the given format
func CreateAudioFile(filename string, sampleRate, bitDepth, channels int) (*Writer, error) {
	fullScale, err := FullScale(bitDepth)
	if err != nil {
		return nil, err
	}
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM),
		intBuf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		scale: fullScale,
	}, nil
}

// WriteBlock writes the first frames of block. Samples are clamped to
// [-1, 1] before conversion.
func (w *Writer) WriteBlock(block [][]float32, frames int) error {
	channels := len(block)
	if channels != w.intBuf.Format.NumChannels {
		return fmt.Errorf("block has %d channels, file has %d", channels, w.intBuf.Format.NumChannels)
	}

	want := frames * channels
	if cap(w.intBuf.Data) < want {
		w.intBuf.Data = make([]int, want)
	}
	w.intBuf.Data = w.intBuf.Data[:want]
	Interleave(block, frames, w.intBuf.Data, w.scale)

	if err := w.encoder.Write(w.intBuf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// Close finalises the WAV header and closes the file
func (w *Writer) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalise WAV file: %w", err)
	}
	return w.file.Close()
}

// Interleave converts the first frames of planar block into interleaved
// integers at the given full scale
func Interleave(block [][]float32, frames int, dst []int, fullScale float64) {
	channels := len(block)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			s := float64(block[ch][i])
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			dst[i*channels+ch] = int(math.Round(s * fullScale))
		}
	}
}
