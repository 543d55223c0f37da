package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/colimiter/internal/cli"
	"github.com/linuxmatters/colimiter/internal/level"
	"github.com/linuxmatters/colimiter/internal/processor"
)

const (
	boxWidth   = 60
	meterWidth = 48
)

var (
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000"))
)

// renderMainView renders the meter, the threshold and the mode's body
func renderMainView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	b.WriteString(renderControls(m))
	b.WriteString("\n\n")

	switch m.Mode {
	case ModePlay:
		b.WriteString(renderPlayback(m))
	default:
		b.WriteString(renderFileQueue(m))
		b.WriteString("\n")
		b.WriteString(renderOverallProgress(m))
	}

	b.WriteString("\n")
	b.WriteString(renderHelp())

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#A40000")).
		Render(cli.AppName + " - Inverted Limiter")

	var status string
	switch m.Mode {
	case ModePlay:
		status = "Playing " + filepath.Base(m.PlayPath)
	default:
		status = fmt.Sprintf("Processing %d file(s)", m.TotalFiles)
	}
	subtitle := mutedStyle.Italic(true).Render(status)

	return title + "\n" + subtitle
}

// renderControls renders the threshold readout and the peak meter
func renderControls(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#00AAAA")).
		Padding(0, 1).
		Width(boxWidth)

	threshold := m.Instance.Threshold
	desc := threshold.Descriptor()

	var content strings.Builder
	// Only the target is safe to read here; the smoothed value belongs to
	// the audio goroutine.
	content.WriteString(fmt.Sprintf("%s: %s\n", desc.Name, desc.Format(threshold.Target())))

	content.WriteString(renderMeter(m.Meter, threshold.Target(), meterWidth))
	content.WriteString(" ")
	content.WriteString(formatMeterDB(m.Meter.Held()))
	content.WriteString("\n")
	content.WriteString(renderScale(meterWidth))

	return box.Render(content.String())
}

// renderScale labels the meter ends and 0 dBFS
func renderScale(width int) string {
	cells := []rune(strings.Repeat(" ", width))
	put := func(pos int, label string) {
		for i, r := range label {
			if pos+i >= 0 && pos+i < len(cells) {
				cells[pos+i] = r
			}
		}
	}
	put(0, fmt.Sprintf("%.0f", meterMinDB))
	put(meterPosition(0, width), "0")
	maxLabel := fmt.Sprintf("+%.0f", meterMaxDB)
	put(width-len(maxLabel), maxLabel)
	return mutedStyle.Render(string(cells))
}

// formatMeterDB renders a meter reading, with silence shown as -inf
func formatMeterDB(db float32) string {
	if level.IsSilent(db) {
		return "  -inf dB"
	}
	return fmt.Sprintf("%6.1f dB", db)
}

// renderPlayback renders the playback position
func renderPlayback(m Model) string {
	var progress float64
	if m.Length > 0 {
		progress = float64(m.Position) / float64(m.Length)
	}
	return fmt.Sprintf("%s\n%s / %s\n",
		renderProgressBar(progress, 40),
		formatClock(m.Position), formatClock(m.Length))
}

// formatClock renders d as m:ss.t
func formatClock(d time.Duration) string {
	d = d.Round(100 * time.Millisecond)
	minutes := int(d / time.Minute)
	seconds := (d % time.Minute).Seconds()
	return fmt.Sprintf("%d:%04.1f", minutes, seconds)
}

// renderFileQueue renders the list of files with their status
func renderFileQueue(m Model) string {
	var b strings.Builder

	for _, file := range m.Files {
		b.WriteString(renderFileEntry(file))
		b.WriteString("\n")
	}

	return b.String()
}

// renderFileEntry renders a single file entry in the queue
func renderFileEntry(file FileProgress) string {
	fileName := filepath.Base(file.InputPath)

	switch file.Status {
	case StatusComplete:
		return fmt.Sprintf(" %s %s → %s\n   %s", okStyle.Render("✓"),
			fileName, filepath.Base(file.OutputPath), formatFileSummary(file))

	case StatusProcessing:
		return fmt.Sprintf(" %s %s → %s\n%s", busyStyle.Render("⚙"),
			fileName, generateOutputName(fileName), renderFileDetails(file))

	case StatusError:
		return fmt.Sprintf(" %s %s\n   Error: %v", errStyle.Render("✗"), fileName, file.Error)

	default:
		return fmt.Sprintf(" %s %s\n   Queued...", mutedStyle.Render("○"), fileName)
	}
}

// formatFileSummary renders the peak change and silenced share of a file
func formatFileSummary(file FileProgress) string {
	return fmt.Sprintf("Peak in: %s | Peak out: %s | Silenced: %.1f%%",
		strings.TrimSpace(formatMeterDB(float32(file.InputPeakDB))),
		strings.TrimSpace(formatMeterDB(float32(file.OutputPeakDB))),
		file.ZeroedRatio*100)
}

// renderFileDetails renders detailed progress for the active file
func renderFileDetails(file FileProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#A40000")).
		Padding(0, 1).
		Width(boxWidth)

	var content strings.Builder
	content.WriteString(renderProgressBar(file.Progress, 40))
	content.WriteString("\n\n")

	elapsed := file.ElapsedTime.Seconds()
	var remaining float64
	if file.Progress > 0 {
		remaining = (elapsed / file.Progress) - elapsed
	}
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs | Remaining: ~%.1fs\n", elapsed, remaining))
	content.WriteString(fmt.Sprintf("Threshold target: %.2f dB", file.ThresholdDB))

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(boxWidth)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
		content = fmt.Sprintf("Processing file %d of %d (%d complete)",
			m.CurrentIndex+1, m.TotalFiles, m.CompletedFiles)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedFiles, m.TotalFiles)
	}

	return box.Render(content)
}

// renderHelp renders the key bindings
func renderHelp() string {
	return mutedStyle.Render("↑/↓ ±1 dB · shift+↑/↓ ±0.1 dB · pgup/pgdn ±10 dB · r reset · ? help · q quit")
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Processing Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, file := range m.Files {
		switch file.Status {
		case StatusComplete:
			b.WriteString(fmt.Sprintf(" %s %s → %s\n   %s\n", okStyle.Render("✓"),
				filepath.Base(file.InputPath), filepath.Base(file.OutputPath), formatFileSummary(file)))
		case StatusError:
			b.WriteString(fmt.Sprintf(" %s %s\n   Error: %v\n", errStyle.Render("✗"),
				filepath.Base(file.InputPath), file.Error))
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", boxWidth))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d of %d file(s) colimited", m.CompletedFiles, m.TotalFiles))
	if m.FailedFiles > 0 {
		b.WriteString(errStyle.Render(fmt.Sprintf(", %d failed", m.FailedFiles)))
	}
	b.WriteString("\n")

	return b.String()
}

// generateOutputName generates the output filename from input
func generateOutputName(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + processor.OutputSuffix + ".wav"
}
