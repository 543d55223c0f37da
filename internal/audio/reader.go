// Package audio provides WAV file I/O in planar float32 blocks using go-audio
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Reader decodes a WAV file block by block
type Reader struct {
	file    *os.File
	decoder *wav.Decoder
	meta    *Metadata

	intBuf *goaudio.IntBuffer
	scale  float32 // 1 / full-scale integer value
}

// Metadata contains audio file metadata
type Metadata struct {
	Duration    time.Duration
	SampleRate  int
	Channels    int
	BitDepth    int
	TotalFrames int64
}

// WAV format tags
const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xfffe
)

// checkPCM rejects sample encodings the integer decoder would misread.
// Extensible files do not expose their subformat through go-audio, so they
// are accepted only at depths that cannot hold IEEE float samples.
func checkPCM(tag uint16, bitDepth int) error {
	switch {
	case tag == formatPCM:
		return nil
	case tag == formatExtensible && (bitDepth == 16 || bitDepth == 24):
		return nil
	case tag == formatIEEEFloat:
		return fmt.Errorf("floating-point WAV is not supported, convert to PCM first")
	default:
		return fmt.Errorf("unsupported WAV encoding (format tag %#x, %d-bit), want integer PCM", tag, bitDepth)
	}
}

// OpenAudioFile opens a PCM WAV file for reading
func OpenAudioFile(filename string) (*Reader, *Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("invalid WAV file: %s", filename)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if err := checkPCM(decoder.WavAudioFormat, bitDepth); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	fullScale, err := FullScale(bitDepth)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	if format.NumChannels < 1 {
		_ = f.Close()
		return nil, nil, fmt.Errorf("no audio channels in file: %s", filename)
	}

	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	meta := &Metadata{
		Duration:    duration,
		SampleRate:  format.SampleRate,
		Channels:    format.NumChannels,
		BitDepth:    bitDepth,
		TotalFrames: int64(duration.Seconds()*float64(format.SampleRate) + 0.5),
	}

	return &Reader{
		file:    f,
		decoder: decoder,
		meta:    meta,
		intBuf:  &goaudio.IntBuffer{Format: format},
		scale:   float32(1 / fullScale),
	}, meta, nil
}

// ReadBlock fills block (one slice per channel) with the next frames and
// returns how many frames were read. It returns 0, nil at end of file.
func (r *Reader) ReadBlock(block [][]float32) (int, error) {
	channels := r.meta.Channels
	if len(block) != channels {
		return 0, fmt.Errorf("block has %d channels, file has %d", len(block), channels)
	}

	frames := len(block[0])
	want := frames * channels
	if cap(r.intBuf.Data) < want {
		r.intBuf.Data = make([]int, want)
	}
	r.intBuf.Data = r.intBuf.Data[:want]

	n, err := r.decoder.PCMBuffer(r.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read audio data: %w", err)
	}

	read := n / channels
	Deinterleave(r.intBuf.Data[:read*channels], block, r.scale)

	return read, nil
}

// Close releases the underlying file
func (r *Reader) Close() error {
	return r.file.Close()
}

// FullScale returns the largest positive integer sample for a PCM bit depth
func FullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return 32767.0, nil
	case 24:
		return 8388607.0, nil
	case 32:
		return 2147483647.0, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d (want 16, 24 or 32)", bitDepth)
	}
}

// Deinterleave splits interleaved integer samples into planar float32
// channels scaled by scale. Frames beyond len(data)/channels are untouched.
func Deinterleave(data []int, block [][]float32, scale float32) {
	channels := len(block)
	if channels == 0 {
		return
	}
	frames := len(data) / channels
	for ch := range block {
		dst := block[ch]
		for i := 0; i < frames && i < len(dst); i++ {
			dst[i] = float32(data[i*channels+ch]) * scale
		}
	}
}

// NewBlock allocates a planar block of channels × frames samples
func NewBlock(channels, frames int) [][]float32 {
	block := make([][]float32, channels)
	for ch := range block {
		block[ch] = make([]float32, frames)
	}
	return block
}
