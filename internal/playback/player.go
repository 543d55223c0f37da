package playback

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/linuxmatters/colimiter/internal/processor"
)

// DefaultBufferDuration is the speaker buffer length. Shorter buffers make
// threshold changes audible sooner at the cost of more wakeups.
const DefaultBufferDuration = 100 * time.Millisecond

// Options controls playback
type Options struct {
	Loop           bool          // Restart from the beginning at end of file
	BufferDuration time.Duration // Speaker buffer length (default: DefaultBufferDuration)
}

// Player plays one WAV file through a colimiter
type Player struct {
	source    beep.StreamSeekCloser
	format    beep.Format
	colimiter *processor.Colimiter
	streamer  *Streamer

	done    chan struct{}
	started bool
}

// Open decodes path and prepares a colimiter for it on inst. Nothing plays
// until Start.
func Open(path string, inst *processor.Instance) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	source, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if !slices.Contains(processor.SupportedChannels, format.NumChannels) {
		_ = source.Close()
		return nil, fmt.Errorf("unsupported channel layout: %d channels (want mono or stereo)", format.NumChannels)
	}

	colimiter, err := inst.NewColimiter(float64(format.SampleRate))
	if err != nil {
		_ = source.Close()
		return nil, err
	}

	return &Player{
		source:    source,
		format:    format,
		colimiter: colimiter,
		done:      make(chan struct{}),
	}, nil
}

// Format returns the decoded stream format
func (p *Player) Format() beep.Format { return p.format }

// Start opens the speaker at the file's sample rate and begins playback.
func (p *Player) Start(opts Options) error {
	if p.started {
		return fmt.Errorf("playback already started")
	}

	buffer := opts.BufferDuration
	if buffer <= 0 {
		buffer = DefaultBufferDuration
	}

	sr := p.format.SampleRate
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}

	var src beep.Streamer = p.source
	if opts.Loop {
		src = beep.Loop(-1, p.source)
	}
	p.streamer = NewStreamer(src, p.colimiter, MaxChunk)

	p.started = true
	speaker.Play(beep.Seq(p.streamer, beep.Callback(func() {
		close(p.done)
	})))

	return nil
}

// Done is closed when playback reaches the end of the file. It never closes
// while looping.
func (p *Player) Done() <-chan struct{} { return p.done }

// Position returns how far playback has got and the file length.
func (p *Player) Position() (pos, length time.Duration) {
	if p.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return p.format.SampleRate.D(p.source.Position()), p.format.SampleRate.D(p.source.Len())
}

// Close stops playback and releases the speaker and the file.
func (p *Player) Close() error {
	if p.started {
		speaker.Clear()
		speaker.Close()
		p.started = false
	}
	return p.source.Close()
}
