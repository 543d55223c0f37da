package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/colimiter/internal/audio"
	"github.com/linuxmatters/colimiter/internal/level"
	"github.com/linuxmatters/colimiter/internal/logging"
	"github.com/linuxmatters/colimiter/internal/processor"
	"github.com/linuxmatters/colimiter/internal/ui"
)

// ProcessCmd renders files through the colimiter
type ProcessCmd struct {
	Automation string   `short:"a" placeholder:"TIME=DB,..." help:"Threshold changes within each file, e.g. \"0s=-45,1.5s=-20\""`
	Files      []string `arg:"" name:"files" help:"Audio files to process" type:"existingfile" optional:""`
}

// Run renders every file in the background while the meter UI runs
func (c *ProcessCmd) Run(g *Globals) error {
	if len(c.Files) == 0 {
		return usageError{msg: "No input files specified", showUsage: true}
	}

	config := processor.DefaultConfig()
	config.ThresholdDB = g.Threshold
	config.BlockSize = g.BlockSize

	automation, err := processor.ParseAutomation(c.Automation)
	if err != nil {
		return err
	}
	config.Automation = automation

	if err := config.Validate(); err != nil {
		return err
	}

	log := g.debugLog
	log.Printf("[MAIN] threshold=%.2f block=%d automation=%q", config.ThresholdDB, config.BlockSize,
		processor.FormatAutomation(config.Automation))

	inst := processor.NewInstance(config.ThresholdDB)

	// Create the Bubbletea UI model
	model := ui.NewModel(inst, c.Files)

	// Start the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Start processing in background
	go func() {
		for i, inputPath := range c.Files {
			fileStartTime := time.Now()

			log.Printf("[MAIN] Sending FileStartMsg for file %d: %s", i, inputPath)
			p.Send(ui.FileStartMsg{
				FileIndex: i,
				FileName:  inputPath,
			})

			ph := &progressHandler{p: p, log: log}

			log.Printf("[MAIN] Starting ProcessAudio for %s", inputPath)
			result, err := processor.ProcessAudio(inputPath, config, inst, ph.callback)
			if err != nil {
				log.Printf("[MAIN] ProcessAudio failed: %v", err)
				p.Send(ui.FileCompleteMsg{
					FileIndex: i,
					Error:     err,
				})
				continue
			}
			log.Printf("[MAIN] %s: %d frames in %d blocks, %s", inputPath, result.Frames, result.Blocks, result.Elapsed)

			// Generate processing report if --logs flag is set
			if g.Logs {
				if err := writeReport(inputPath, fileStartTime, result); err != nil {
					log.Printf("[MAIN] Failed to generate log file: %v", err)
				}
			}

			log.Printf("[MAIN] Sending FileCompleteMsg for file %d", i)
			p.Send(ui.FileCompleteMsg{
				FileIndex:    i,
				OutputPath:   result.OutputPath,
				InputPeakDB:  float64(level.GainToDB(float32(result.Input.Peak()))),
				OutputPeakDB: float64(level.GainToDB(float32(result.Output.Peak()))),
				ZeroedRatio:  result.Output.ZeroedRatio(),
			})
		}

		log.Printf("[MAIN] Sending AllCompleteMsg")
		p.Send(ui.AllCompleteMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

// writeReport reads the input's format back and writes the report
func writeReport(inputPath string, startTime time.Time, result *processor.ProcessingResult) error {
	reader, metadata, err := audio.OpenAudioFile(inputPath)
	if err != nil {
		return err
	}
	reader.Close()

	return logging.GenerateReport(logging.ReportData{
		InputPath:  inputPath,
		StartTime:  startTime,
		EndTime:    time.Now(),
		Duration:   metadata.Duration,
		BitDepth:   metadata.BitDepth,
		Result:     result,
		AppVersion: version,
	})
}

// progressHandler forwards processor progress to the UI
type progressHandler struct {
	p        *tea.Program
	log      *logging.DebugLog
	lastSent float64
}

func (ph *progressHandler) callback(progress float64, thresholdDB float32) {
	// One message per percent is plenty for a progress bar
	if progress < 1.0 && progress-ph.lastSent < 0.01 {
		return
	}
	ph.lastSent = progress

	ph.log.Printf("[MAIN] Sending ProgressMsg: %.1f%%, threshold %.2f dB", progress*100, thresholdDB)
	ph.p.Send(ui.ProgressMsg{
		Progress:    progress,
		ThresholdDB: thresholdDB,
	})
}
