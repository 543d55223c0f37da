// Package meter shares the colimiter's peak level between the audio goroutine
// and whoever displays it.
//
// Peak is a single-writer, single-reader float32 register. Observation is the
// reader's "someone is watching" flag, which the processor consults once per
// block to skip the publish when nobody looks. Both are plain atomics: the
// writer never blocks, the reader never blocks, and a stale reading is fine
// because the value is a meter, not a control signal.
package meter

import (
	"math"
	"sync/atomic"

	"github.com/linuxmatters/colimiter/internal/level"
)

// Silence is the register's value before the first publish.
const Silence float32 = 0

// Peak holds the most recent block peak in linear amplitude.
// The zero value reads as Silence.
type Peak struct {
	bits atomic.Uint32
	seq  atomic.Uint32 // publishes so far, wrapping
}

// NewPeak returns a register holding Silence.
func NewPeak() *Peak {
	p := &Peak{}
	p.bits.Store(math.Float32bits(Silence))
	return p
}

// Publish overwrites the register. Audio goroutine only.
func (p *Peak) Publish(v float32) {
	p.bits.Store(math.Float32bits(v))
	p.seq.Add(1)
}

// Seq counts publishes. Readers compare it to spot values written after a
// point in time.
func (p *Peak) Seq() uint32 {
	return p.seq.Load()
}

// Load returns the last published value, or Silence.
func (p *Peak) Load() float32 {
	return math.Float32frombits(p.bits.Load())
}

// LoadDB returns the last published value in dB, floored at
// level.MinusInfinityDB.
func (p *Peak) LoadDB() float32 {
	return level.GainToDB(p.Load())
}

// Observation says whether a consumer is currently reading the meter.
// The zero value is "not observed".
type Observation struct {
	open atomic.Bool
}

// Set marks the meter as observed or not.
func (o *Observation) Set(observed bool) {
	o.open.Store(observed)
}

// Observed reports the flag.
func (o *Observation) Observed() bool {
	return o.open.Load()
}

// Reader is the observer's view of a meter: the shared register plus the
// observation flag it owns.
type Reader struct {
	Peak        *Peak
	Observation *Observation

	openedAt atomic.Uint32 // Peak.Seq when last opened
}

// NewReader pairs a register with a fresh observation flag.
func NewReader(p *Peak) *Reader {
	return &Reader{Peak: p, Observation: &Observation{}}
}

// Open marks the meter as watched. Whatever the register held before this
// call is not reported.
func (r *Reader) Open() {
	r.openedAt.Store(r.Peak.Seq())
	r.Observation.Set(true)
}

// Close marks the meter as no longer watched.
func (r *Reader) Close() { r.Observation.Set(false) }

// ReadDB returns the peak in dB, or level.MinusInfinityDB while nobody is
// observing and until the first block published since Open.
func (r *Reader) ReadDB() float32 {
	if !r.Observation.Observed() || r.Peak.Seq() == r.openedAt.Load() {
		return level.MinusInfinityDB
	}
	return r.Peak.LoadDB()
}
