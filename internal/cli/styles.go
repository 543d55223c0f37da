// Package cli holds the terminal styling shared by the command-line front end.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Application metadata shown by --version, the help screen and the UI header
const (
	AppName  = "Colimiter"
	Vendor   = "Linux Matters"
	Homepage = "https://github.com/linuxmatters/colimiter"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#A40000") // Colimiter red
	accentColor  = lipgloss.Color("#FFA500") // Orange
	mutedColor   = lipgloss.Color("#888888") // Gray
	textColor    = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	NoteStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render(AppName + " 🎚"))
	printKV("Version:", version)
	printKV("Vendor:", Vendor)
	printKV("Homepage:", Homepage)
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintNote prints an informational line, e.g. where settings were saved
func PrintNote(message string) {
	fmt.Println(NoteStyle.Render(message))
}

// PrintKV prints one aligned key-value line
func PrintKV(key, value string) {
	printKV(key, value)
}

func printKV(key, value string) {
	fmt.Printf("%s %s\n", KeyStyle.Render(fmt.Sprintf("%-9s", key)), ValueStyle.Render(value))
}
