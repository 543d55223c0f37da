package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/linuxmatters/colimiter/internal/cli"
)

func init() {
	// The TUI owns the terminal; keep the opener's chatter off it.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// openHomepage opens the project homepage. Failures are ignored; the meter
// keeps running either way.
func (m Model) openHomepage() tea.Cmd {
	open := m.openURL
	return func() tea.Msg {
		if open != nil {
			_ = open(cli.Homepage)
		}
		return nil
	}
}
