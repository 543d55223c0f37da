package main

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rakyll/portmidi"

	"github.com/linuxmatters/colimiter/internal/cli"
	"github.com/linuxmatters/colimiter/internal/midi"
	"github.com/linuxmatters/colimiter/internal/playback"
	"github.com/linuxmatters/colimiter/internal/processor"
	"github.com/linuxmatters/colimiter/internal/ui"
)

// PlayCmd plays a file through the colimiter in real time
type PlayCmd struct {
	Loop       bool   `short:"l" help:"Loop playback until quit"`
	Save       bool   `help:"Remember the final threshold as the default"`
	MIDI       bool   `name:"midi" help:"Control the threshold from a MIDI knob"`
	MIDIDevice int    `name:"midi-device" help:"MIDI input device ID (-1 for the system default)" default:"-1"`
	MIDICC     string `name:"midi-cc" placeholder:"[CH:]CC" help:"Control change bound to the threshold" default:"7"`
	MIDIList   bool   `name:"midi-list" help:"List MIDI input devices and exit"`
	File       string `arg:"" name:"file" help:"WAV file to play" type:"existingfile" optional:""`
}

// Run plays the file with the meter UI until it ends or the user quits
func (c *PlayCmd) Run(g *Globals) error {
	if c.MIDIList {
		return listMIDIInputs()
	}
	if c.File == "" {
		return usageError{msg: "No input file specified", showUsage: true}
	}

	log := g.debugLog
	inst := processor.NewInstance(g.Threshold)

	player, err := playback.Open(c.File, inst)
	if err != nil {
		return err
	}
	defer player.Close()

	format := player.Format()
	log.Printf("[PLAY] %s: %d Hz, %d channel(s)", c.File, format.SampleRate, format.NumChannels)

	if c.MIDI {
		binding, err := midi.ParseBinding(c.MIDICC)
		if err != nil {
			return err
		}

		ctrl, err := midi.Open(portmidi.DeviceID(c.MIDIDevice), binding, inst.Threshold, func(db float32) {
			log.Printf("[MIDI] %s -> %.2f dB", binding, db)
		})
		if err != nil {
			return err
		}
		defer ctrl.Close()

		go func() {
			for err := range ctrl.Errors() {
				log.Printf("[MIDI] %v", err)
			}
		}()
	}

	model := ui.NewPlayModel(inst, c.File, player.Position)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if err := player.Start(playback.Options{Loop: c.Loop}); err != nil {
		return err
	}
	go func() {
		<-player.Done()
		p.Send(ui.PlaybackDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	final := inst.Threshold.Target()
	log.Printf("[PLAY] final threshold %.2f dB", final)

	if c.Save {
		path := settingsPath()
		if path == "" {
			return fmt.Errorf("no config directory to save settings in")
		}
		if err := saveThreshold(path, final); err != nil {
			return err
		}
		cli.PrintNote(fmt.Sprintf("Saved threshold %s to %s", inst.Threshold.Descriptor().Format(final), path))
	}

	return nil
}

// listMIDIInputs prints every MIDI input with its device ID
func listMIDIInputs() error {
	if err := portmidi.Initialize(); err != nil {
		return fmt.Errorf("failed to initialise MIDI: %w", err)
	}
	defer portmidi.Terminate()

	inputs := midi.Inputs()
	if len(inputs) == 0 {
		cli.PrintNote("No MIDI inputs found")
		return nil
	}
	for _, in := range inputs {
		cli.PrintKV(strconv.Itoa(int(in.ID)), in.Name)
	}
	return nil
}
