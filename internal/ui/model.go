// Package ui provides the Bubbletea terminal user interface for colimiter:
// the peak meter, the threshold control and the file queue
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/linuxmatters/colimiter/internal/processor"
)

// Threshold key steps, in dB
const (
	StepCoarse float32 = 10
	StepNormal float32 = 1
	StepFine   float32 = 0.1
)

// Mode selects what the model shows below the meter
type Mode int

const (
	ModeProcess Mode = iota // Rendering a queue of files
	ModePlay                // Playing one file through the speaker
)

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusProcessing
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	InputPath  string
	OutputPath string
	Status     FileStatus

	Progress    float64 // 0.0 to 1.0
	StartTime   time.Time
	ElapsedTime time.Duration
	ThresholdDB float32

	// Completion results
	InputPeakDB  float64
	OutputPeakDB float64
	ZeroedRatio  float64

	Error error
}

// PositionFunc reports playback position and total length
type PositionFunc func() (position, length time.Duration)

// Model is the Bubbletea model for the meter and threshold control
type Model struct {
	Instance *processor.Instance
	Mode     Mode
	Version  string

	// File queue (ModeProcess)
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	// Playback (ModePlay)
	PlayPath string
	Position time.Duration
	Length   time.Duration
	position PositionFunc

	// Meter state, refreshed every RefreshInterval
	Meter PeakHold

	// Global state
	StartTime time.Time
	Done      bool

	// Terminal dimensions
	Width  int
	Height int

	now     func() time.Time
	openURL func(string) error
}

// NewModel creates a model rendering the given input files
func NewModel(inst *processor.Instance, inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{
			InputPath: path,
			Status:    StatusQueued,
		}
	}

	m := newModel(inst, ModeProcess)
	m.Files = files
	m.TotalFiles = len(inputFiles)
	return m
}

// NewPlayModel creates a model for live playback of path
func NewPlayModel(inst *processor.Instance, path string, position PositionFunc) Model {
	m := newModel(inst, ModePlay)
	m.PlayPath = path
	m.position = position
	return m
}

func newModel(inst *processor.Instance, mode Mode) Model {
	return Model{
		Instance:     inst,
		Mode:         mode,
		CurrentIndex: -1, // No file processing yet
		Meter:        NewPeakHold(PeakHoldTime),
		StartTime:    time.Now(),
		now:          time.Now,
		openURL:      browser.OpenURL,
	}
}

// Init opens the meter and starts the refresh tick
func (m Model) Init() tea.Cmd {
	m.Instance.Meter.Open()
	return tick()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		m.Meter.Update(m.Instance.Meter.ReadDB(), m.now())
		if m.position != nil {
			m.Position, m.Length = m.position()
		}
		if m.Done {
			return m, nil
		}
		return m, tick()

	case ProgressMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			fp := &m.Files[m.CurrentIndex]
			fp.Progress = msg.Progress
			fp.ThresholdDB = msg.ThresholdDB
			fp.ElapsedTime = time.Since(fp.StartTime)
		}

	case FileStartMsg:
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Files) {
			m.CurrentIndex = msg.FileIndex
			m.Files[m.CurrentIndex].Status = StatusProcessing
			m.Files[m.CurrentIndex].StartTime = time.Now()
		}

	case FileCompleteMsg:
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Files) {
			fp := &m.Files[msg.FileIndex]
			fp.Status = StatusComplete
			fp.OutputPath = msg.OutputPath
			fp.InputPeakDB = msg.InputPeakDB
			fp.OutputPeakDB = msg.OutputPeakDB
			fp.ZeroedRatio = msg.ZeroedRatio
			fp.Error = msg.Error
			fp.Progress = 1.0
			fp.ElapsedTime = time.Since(fp.StartTime)

			if msg.Error != nil {
				fp.Status = StatusError
				m.FailedFiles++
			} else {
				m.CompletedFiles++
			}
		}

	case AllCompleteMsg:
		m.Done = true
		return m, m.quit()

	case PlaybackDoneMsg:
		m.Done = true
		return m, m.quit()
	}

	return m, nil
}

// handleKey maps key presses onto the threshold control
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	threshold := m.Instance.Threshold

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, m.quit()
	case "up", "k", "+":
		threshold.Nudge(StepNormal)
	case "down", "j", "-":
		threshold.Nudge(-StepNormal)
	case "shift+up", "K":
		threshold.Nudge(StepFine)
	case "shift+down", "J":
		threshold.Nudge(-StepFine)
	case "pgup":
		threshold.Nudge(StepCoarse)
	case "pgdown":
		threshold.Nudge(-StepCoarse)
	case "r":
		threshold.Set(threshold.Descriptor().Default)
	case "?":
		return m, m.openHomepage()
	}

	return m, nil
}

// quit stops observing the meter before leaving
func (m Model) quit() tea.Cmd {
	m.Instance.Meter.Close()
	return tea.Quit
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\n", len(m.Files))
	}

	if m.Done && m.Mode == ModeProcess {
		return renderCompletionSummary(m)
	}

	return renderMainView(m)
}

// tick schedules the next meter refresh
func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}
