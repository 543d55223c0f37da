package midi

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rakyll/portmidi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/colimiter/internal/param"
)

func cc(channel int, controller, value int64) portmidi.Event {
	return portmidi.Event{Status: int64(statusControlChange | channel), Data1: controller, Data2: value}
}

func TestParseBinding(t *testing.T) {
	tests := []struct {
		in   string
		want Binding
	}{
		{"7", Binding{Channel: AnyChannel, Controller: 7}},
		{" 74 ", Binding{Channel: AnyChannel, Controller: 74}},
		{"1:7", Binding{Channel: 0, Controller: 7}},
		{"16:127", Binding{Channel: 15, Controller: 127}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBinding(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBindingErrors(t *testing.T) {
	for _, in := range []string{"", "x", "128", "-1", "0:7", "17:7", "a:7", "1:"} {
		_, err := ParseBinding(in)
		assert.Error(t, err, in)
	}
}

func TestBindingString(t *testing.T) {
	assert.Equal(t, "CC 7", DefaultBinding.String())
	assert.Equal(t, "ch 10 CC 74", Binding{Channel: 9, Controller: 74}.String())
}

func TestBindingMatches(t *testing.T) {
	anyCh := Binding{Channel: AnyChannel, Controller: 7}
	ch2 := Binding{Channel: 1, Controller: 7}

	assert.True(t, anyCh.Matches(cc(0, 7, 64)))
	assert.True(t, anyCh.Matches(cc(15, 7, 64)))
	assert.False(t, anyCh.Matches(cc(0, 8, 64)))

	assert.True(t, ch2.Matches(cc(1, 7, 0)))
	assert.False(t, ch2.Matches(cc(0, 7, 0)))

	noteOn := portmidi.Event{Status: 0x90, Data1: 7, Data2: 100}
	assert.False(t, anyCh.Matches(noteOn))
}

func TestHandleEventMapsRange(t *testing.T) {
	v := param.NewValue(param.Threshold)

	require.True(t, HandleEvent(cc(0, 7, 0), DefaultBinding, v))
	assert.Equal(t, float32(-90), v.Target())

	require.True(t, HandleEvent(cc(0, 7, 127), DefaultBinding, v))
	assert.Equal(t, float32(20), v.Target())

	require.True(t, HandleEvent(cc(0, 7, 64), DefaultBinding, v))
	assert.InDelta(t, -90+110*64.0/127, v.Target(), 1e-4)

	// Out-of-range data bytes are clamped rather than trusted.
	require.True(t, HandleEvent(cc(0, 7, 300), DefaultBinding, v))
	assert.Equal(t, float32(20), v.Target())
}

func TestHandleEventIgnoresOtherControls(t *testing.T) {
	v := param.NewValue(param.Threshold)

	assert.False(t, HandleEvent(cc(0, 1, 0), DefaultBinding, v))
	assert.Equal(t, float32(-45), v.Target())
}

// scriptedSource hands out queued batches, then fails with err once empty
// (or returns nothing forever when err is nil)
type scriptedSource struct {
	mu      sync.Mutex
	batches [][]portmidi.Event
	err     error
}

func (s *scriptedSource) Read(int) ([]portmidi.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) > 0 {
		batch := s.batches[0]
		s.batches = s.batches[1:]
		return batch, nil
	}
	return nil, s.err
}

// drain waits for the errors channel to close, returning what it delivered
func drain(t *testing.T, errs <-chan error) []error {
	t.Helper()
	var got []error
	timeout := time.After(2 * time.Second)
	for {
		select {
		case err, ok := <-errs:
			if !ok {
				return got
			}
			got = append(got, err)
		case <-timeout:
			t.Fatal("errors channel never closed")
			return got
		}
	}
}

func TestControllerForwardsEvents(t *testing.T) {
	v := param.NewValue(param.Threshold)
	changed := make(chan float32, 4)

	src := &scriptedSource{batches: [][]portmidi.Event{{cc(0, 1, 5), cc(0, 7, 127)}}}
	c := newController(src, DefaultBinding, v, func(db float32) { changed <- db })

	select {
	case db := <-changed:
		assert.Equal(t, float32(20), db)
	case <-time.After(2 * time.Second):
		t.Fatal("no change forwarded")
	}

	c.stop()
	assert.Empty(t, drain(t, c.Errors()), "clean stop reports no error")
	assert.Equal(t, float32(20), v.Target())
}

func TestControllerReadErrorClosesErrors(t *testing.T) {
	v := param.NewValue(param.Threshold)
	src := &scriptedSource{err: errors.New("device unplugged")}
	c := newController(src, DefaultBinding, v, nil)

	errs := drain(t, c.Errors())
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "device unplugged")

	// The reader has already exited; stopping must not block
	c.stop()
}
