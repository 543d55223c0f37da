package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/linuxmatters/colimiter/internal/cli"
	"github.com/linuxmatters/colimiter/internal/logging"
	"github.com/linuxmatters/colimiter/internal/param"
)

var (
	version = "0.0.1"
)

// Globals are the flags shared by every command
type Globals struct {
	Threshold float32 `short:"t" help:"Threshold in dB (${threshold_min} to ${threshold_max}), e.g. --threshold=-30" default:"${threshold_default}"`
	BlockSize int     `short:"b" help:"Frames per processing block" default:"512"`
	Logs      bool    `help:"Save a processing report next to each output"`
	Debug     string  `type:"path" placeholder:"FILE" help:"Write a debug log to FILE"`
	Version   bool    `short:"v" help:"Show version information"`

	debugLog *logging.DebugLog `kong:"-"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Process ProcessCmd `cmd:"" default:"withargs" help:"Render WAV files through the colimiter"`
	Play    PlayCmd    `cmd:"" help:"Play a WAV file through the colimiter with live control"`
	Tone    ToneCmd    `cmd:"" help:"Write a test signal: tone, mains hum and noise"`
}

func main() {
	cliArgs := &CLI{}
	options := []kong.Option{
		kong.Name("colimiter"),
		kong.Description("Inverted limiter: keeps only what rises above the threshold"),
		kong.UsageOnError(),
		kong.Vars{
			"version":           version,
			"threshold_min":     fmt.Sprintf("%.0f", param.Threshold.Min),
			"threshold_max":     fmt.Sprintf("%.0f", param.Threshold.Max),
			"threshold_default": fmt.Sprintf("%.0f", param.Threshold.Default),
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	}
	if path := settingsPath(); path != "" {
		options = append(options, kong.Configuration(kong.JSON, path))
	}
	ctx := kong.Parse(cliArgs, options...)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Out of range values are clamped, as the control does
	cliArgs.Threshold = param.Threshold.Clamp(cliArgs.Threshold)

	if cliArgs.Debug != "" {
		debugLog, err := logging.OpenDebugLog(cliArgs.Debug)
		if err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
		cliArgs.debugLog = debugLog
	}

	err := ctx.Run(&cliArgs.Globals)
	cliArgs.debugLog.Close()

	if err != nil {
		cli.PrintError(err.Error())
		var usageErr usageError
		if errors.As(err, &usageErr) && usageErr.showUsage {
			_ = ctx.PrintUsage(false)
		}
		os.Exit(1)
	}
}

// usageError is an error that should be followed by the usage text
type usageError struct {
	msg       string
	showUsage bool
}

func (e usageError) Error() string { return e.msg }

// settingsPath is where the persisted threshold lives, or "" when the
// platform has no config directory
func settingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "colimiter", "settings.json")
}
