package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/colimiter/internal/level"
)

const (
	// RefreshInterval is how often the meter reads the peak register
	RefreshInterval = 100 * time.Millisecond

	// PeakHoldTime is how long the held peak marker stays put
	PeakHoldTime = 100 * time.Millisecond

	// Meter scale, shared with the threshold marker
	meterMinDB float32 = -90
	meterMaxDB float32 = 20
)

// PeakHold keeps the loudest recent reading on screen for a hold time
type PeakHold struct {
	Hold time.Duration

	current float32
	held    float32
	heldAt  time.Time
}

// NewPeakHold returns a meter state reading silence
func NewPeakHold(hold time.Duration) PeakHold {
	return PeakHold{Hold: hold, current: level.MinusInfinityDB, held: level.MinusInfinityDB}
}

// Update records a reading taken at now
func (p *PeakHold) Update(db float32, now time.Time) {
	p.current = db
	if db >= p.held || now.Sub(p.heldAt) >= p.Hold {
		p.held = db
		p.heldAt = now
	}
}

// Current returns the latest reading in dB
func (p PeakHold) Current() float32 { return p.current }

// Held returns the held peak in dB
func (p PeakHold) Held() float32 { return p.held }

// meterPosition maps dB onto 0..width-1 cells of the meter scale
func meterPosition(db float32, width int) int {
	if width <= 1 {
		return 0
	}
	frac := (db - meterMinDB) / (meterMaxDB - meterMinDB)
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return int(frac*float32(width-1) + 0.5)
}

var (
	meterLowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	meterHighStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	meterClipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000"))
	thresholdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAAA")).Bold(true)
	meterEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	meterHeldStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
)

// renderMeter draws the level bar with a held-peak tick and a threshold
// marker. Cells above the threshold are the part of the signal that gets
// through the colimiter.
func renderMeter(p PeakHold, thresholdDB float32, width int) string {
	fill := -1
	if !level.IsSilent(p.Current()) {
		fill = meterPosition(p.Current(), width)
	}
	heldAt := -1
	if !level.IsSilent(p.Held()) {
		heldAt = meterPosition(p.Held(), width)
	}
	thresholdAt := meterPosition(thresholdDB, width)
	zeroAt := meterPosition(0, width)

	var b strings.Builder
	for i := 0; i < width; i++ {
		cell, style := "░", meterEmptyStyle
		switch {
		case i == thresholdAt:
			cell, style = "┃", thresholdStyle
		case i == heldAt && i > fill:
			cell, style = "▏", meterHeldStyle
		case i <= fill && i > zeroAt:
			cell, style = "█", meterClipStyle
		case i <= fill && i > thresholdAt:
			cell, style = "█", meterHighStyle
		case i <= fill:
			cell, style = "█", meterLowStyle
		}
		b.WriteString(style.Render(cell))
	}
	return b.String()
}
