// Package midi lets a hardware control-change knob drive the threshold.
package midi

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rakyll/portmidi"

	"github.com/linuxmatters/colimiter/internal/param"
)

const (
	statusControlChange = 0xb0
	bufferSize          = 1024
	pollInterval        = 5 * time.Millisecond
)

// AnyChannel matches control changes on every MIDI channel.
const AnyChannel = -1

// Binding selects the knob that drives the threshold
type Binding struct {
	Channel    int   // 0-based MIDI channel, or AnyChannel
	Controller int64 // CC number, 0-127
}

// DefaultBinding is CC 7 (channel volume) on any channel
var DefaultBinding = Binding{Channel: AnyChannel, Controller: 7}

// ParseBinding reads "CC" or "CHANNEL:CC", with channels numbered 1-16 as
// printed on hardware. Example: "7", "10:74".
func ParseBinding(s string) (Binding, error) {
	b := Binding{Channel: AnyChannel}

	cc := strings.TrimSpace(s)
	if ch, rest, ok := strings.Cut(cc, ":"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(ch))
		if err != nil || n < 1 || n > 16 {
			return Binding{}, fmt.Errorf("invalid MIDI channel %q: want 1-16", ch)
		}
		b.Channel = n - 1
		cc = strings.TrimSpace(rest)
	}

	n, err := strconv.ParseInt(cc, 10, 64)
	if err != nil || n < 0 || n > 127 {
		return Binding{}, fmt.Errorf("invalid MIDI controller %q: want 0-127", cc)
	}
	b.Controller = n

	return b, nil
}

func (b Binding) String() string {
	if b.Channel == AnyChannel {
		return fmt.Sprintf("CC %d", b.Controller)
	}
	return fmt.Sprintf("ch %d CC %d", b.Channel+1, b.Controller)
}

// Matches reports whether ev is a control change for this binding.
func (b Binding) Matches(ev portmidi.Event) bool {
	if ev.Status&0xf0 != statusControlChange {
		return false
	}
	if b.Channel != AnyChannel && int(ev.Status&0x0f) != b.Channel {
		return false
	}
	return ev.Data1 == b.Controller
}

// HandleEvent applies ev to v if it matches b, mapping the 7-bit value onto
// the control's full range. It reports whether the target was set.
func HandleEvent(ev portmidi.Event, b Binding, v *param.Value) bool {
	if !b.Matches(ev) {
		return false
	}

	data := ev.Data2
	if data < 0 {
		data = 0
	} else if data > 127 {
		data = 127
	}
	v.SetNormalized(float32(data) / 127)

	return true
}

// Device describes a MIDI input
type Device struct {
	ID   portmidi.DeviceID
	Name string
}

// Inputs lists the MIDI input devices. portmidi must be initialised.
func Inputs() []Device {
	var devices []Device
	for i := 0; i < portmidi.CountDevices(); i++ {
		id := portmidi.DeviceID(i)
		info := portmidi.Info(id)
		if info == nil || !info.IsInputAvailable {
			continue
		}
		devices = append(devices, Device{ID: id, Name: info.Interface + ": " + info.Name})
	}
	return devices
}

// Controller reads control changes from one input and forwards them to a
// control until closed
type Controller struct {
	stream   *portmidi.Stream
	source   eventSource
	binding  Binding
	target   *param.Value
	onChange func(float32)

	done chan struct{}
	wg   sync.WaitGroup
	errs chan error
}

// eventSource is the part of a portmidi input stream the reader uses
type eventSource interface {
	Read(max int) ([]portmidi.Event, error)
}

// Open starts listening on device id, or the system default input when id
// is negative. onChange, if not nil, is called with the new target after
// every matching event.
func Open(id portmidi.DeviceID, binding Binding, target *param.Value, onChange func(float32)) (*Controller, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialise MIDI: %w", err)
	}

	if id < 0 {
		id = portmidi.DefaultInputDeviceID()
	}
	if id < 0 {
		_ = portmidi.Terminate()
		return nil, fmt.Errorf("no MIDI input device available")
	}

	stream, err := portmidi.NewInputStream(id, bufferSize)
	if err != nil {
		_ = portmidi.Terminate()
		return nil, fmt.Errorf("failed to open MIDI input %d: %w", id, err)
	}

	c := newController(stream, binding, target, onChange)
	c.stream = stream

	return c, nil
}

// newController starts the reader goroutine on src
func newController(src eventSource, binding Binding, target *param.Value, onChange func(float32)) *Controller {
	c := &Controller{
		source:   src,
		binding:  binding,
		target:   target,
		onChange: onChange,
		done:     make(chan struct{}),
		errs:     make(chan error, 1),
	}

	c.wg.Add(1)
	go c.run()

	return c
}

// Errors delivers the read error that stopped the controller, if any. It is
// closed once the reader has stopped.
func (c *Controller) Errors() <-chan error { return c.errs }

func (c *Controller) run() {
	defer c.wg.Done()
	defer close(c.errs)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		events, err := c.source.Read(bufferSize)
		if err != nil {
			c.errs <- fmt.Errorf("MIDI read failed: %w", err)
			return
		}

		for _, ev := range events {
			if HandleEvent(ev, c.binding, c.target) && c.onChange != nil {
				c.onChange(c.target.Target())
			}
		}
	}
}

// stop ends the reader goroutine and waits for it
func (c *Controller) stop() {
	close(c.done)
	c.wg.Wait()
}

// Close stops the reader and releases the device
func (c *Controller) Close() error {
	c.stop()

	err := c.stream.Close()
	if termErr := portmidi.Terminate(); err == nil {
		err = termErr
	}
	return err
}
