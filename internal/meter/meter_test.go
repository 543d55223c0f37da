package meter

import (
	"sync"
	"testing"

	"github.com/linuxmatters/colimiter/internal/level"
)

func TestPeakInitialSilence(t *testing.T) {
	p := NewPeak()
	if got := p.Load(); got != Silence {
		t.Fatalf("Load() = %v, want %v", got, Silence)
	}
	if got := p.LoadDB(); got != level.MinusInfinityDB {
		t.Fatalf("LoadDB() = %v, want %v", got, level.MinusInfinityDB)
	}

	var zero Peak
	if got := zero.Load(); got != Silence {
		t.Fatalf("zero value Load() = %v, want %v", got, Silence)
	}
}

func TestPeakPublishOverwrites(t *testing.T) {
	p := NewPeak()
	p.Publish(0.9)
	p.Publish(0.25)
	if got := p.Load(); got != 0.25 {
		t.Fatalf("Load() = %v, want 0.25", got)
	}
	if got := p.LoadDB(); got < -12.05 || got > -12.03 {
		t.Fatalf("LoadDB() = %v, want about -12.04", got)
	}
}

func TestReaderRequiresObservation(t *testing.T) {
	p := NewPeak()
	r := NewReader(p)
	p.Publish(1)

	if got := r.ReadDB(); got != level.MinusInfinityDB {
		t.Fatalf("closed ReadDB() = %v, want floor", got)
	}

	r.Open()
	if got := r.ReadDB(); got != level.MinusInfinityDB {
		t.Fatalf("ReadDB() before any publish since Open = %v, want floor", got)
	}

	p.Publish(1)
	if got := r.ReadDB(); got != 0 {
		t.Fatalf("open ReadDB() = %v, want 0", got)
	}

	r.Close()
	if r.Observation.Observed() {
		t.Fatal("Observed() after Close")
	}
}

func TestReaderReopenHidesStalePeak(t *testing.T) {
	p := NewPeak()
	r := NewReader(p)

	r.Open()
	p.Publish(0.5)
	if got := r.ReadDB(); got > -6.02 || got < -6.03 {
		t.Fatalf("ReadDB() = %v, want about -6.02", got)
	}

	r.Close()
	r.Open()
	if got := r.ReadDB(); got != level.MinusInfinityDB {
		t.Fatalf("ReadDB() after reopen = %v, want floor until the next publish", got)
	}

	// The same value published again is a fresh reading
	p.Publish(0.5)
	if got := r.ReadDB(); got > -6.02 || got < -6.03 {
		t.Errorf("ReadDB() after publish = %v, want about -6.02", got)
	}
}

func TestPeakSeqCountsPublishes(t *testing.T) {
	p := NewPeak()
	if p.Seq() != 0 {
		t.Fatalf("Seq() = %d, want 0", p.Seq())
	}
	p.Publish(0.1)
	p.Publish(0.1)
	if p.Seq() != 2 {
		t.Errorf("Seq() = %d, want 2", p.Seq())
	}
}

func TestPeakConcurrentAccess(t *testing.T) {
	p := NewPeak()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			p.Publish(float32(i%100) / 100)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			v := p.Load()
			if v < 0 || v >= 1 {
				t.Errorf("torn read: %v", v)
				return
			}
		}
	}()

	wg.Wait()
}
