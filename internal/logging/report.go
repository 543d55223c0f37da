package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/linuxmatters/colimiter/internal/level"
	"github.com/linuxmatters/colimiter/internal/param"
	"github.com/linuxmatters/colimiter/internal/processor"
)

// ReportData contains all the information needed to generate a processing report
type ReportData struct {
	InputPath  string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration // Length of the audio
	BitDepth   int
	Result     *processor.ProcessingResult
	AppVersion string
}

// ReportPath returns where the report for outputPath is written:
// presenter1-processed.wav → presenter1-processed.log
func ReportPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

// GenerateReport writes the processing report next to the output file.
func GenerateReport(data ReportData) error {
	if data.Result == nil {
		return fmt.Errorf("no processing result to report")
	}

	f, err := os.Create(ReportPath(data.Result.OutputPath))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	WriteReport(f, data)

	return f.Close()
}

// WriteReport renders the report sections in order:
// 1. Header - file info and timestamp
// 2. Processing Summary - timings and block counts
// 3. Settings - threshold and automation
// 4. Levels - Input/Output table per channel
// 5. Block Peaks - distribution of per-block input peaks
func WriteReport(w io.Writer, data ReportData) {
	writeReportHeader(w, data)
	writeProcessingSummary(w, data)
	writeSettings(w, data.Result)
	writeLevelTable(w, data.Result)
	writeBlockPeaks(w, data.Result)
}

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

func writeReportHeader(w io.Writer, data ReportData) {
	title := "Colimiter Processing Report"
	if data.AppVersion != "" {
		title += " (v" + data.AppVersion + ")"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "File: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(w, "Output: %s\n", filepath.Base(data.Result.OutputPath))
	fmt.Fprintf(w, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Duration: %s\n", formatDuration(data.Duration))
	fmt.Fprintf(w, "Format: %d Hz, %s", data.Result.SampleRate, channelName(data.Result.Channels))
	if data.BitDepth > 0 {
		fmt.Fprintf(w, ", %d-bit", data.BitDepth)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
}

func writeProcessingSummary(w io.Writer, data ReportData) {
	writeSection(w, "Processing Summary")

	r := data.Result
	fmt.Fprintf(w, "Frames:      %d\n", r.Frames)
	fmt.Fprintf(w, "Blocks:      %d (%d frames each)\n", r.Blocks, r.Config.BlockSize)
	fmt.Fprintf(w, "Processing:  %s", formatDuration(r.Elapsed))
	if r.Elapsed > 0 && data.Duration > 0 {
		fmt.Fprintf(w, " (%.0fx real-time)", float64(data.Duration)/float64(r.Elapsed))
	}
	fmt.Fprintln(w)

	if total := data.EndTime.Sub(data.StartTime); total > 0 {
		fmt.Fprintf(w, "Total:       %s\n", formatDuration(total))
	}
	fmt.Fprintln(w)
}

func writeSettings(w io.Writer, r *processor.ProcessingResult) {
	writeSection(w, "Settings")

	fmt.Fprintf(w, "Threshold:   %s (%s linear)\n",
		param.Threshold.Format(r.Config.ThresholdDB),
		formatMetric(float64(level.DBToGain(r.Config.ThresholdDB)), 5))
	if len(r.Config.Automation) > 0 {
		fmt.Fprintf(w, "Automation:  %s\n", processor.FormatAutomation(r.Config.Automation))
	}
	fmt.Fprintf(w, "Final:       %s\n", param.Threshold.Format(r.FinalThresholdDB))
	fmt.Fprintln(w)
}

func writeLevelTable(w io.Writer, r *processor.ProcessingResult) {
	writeSection(w, "Levels")

	table := NewMetricTable()
	for ch := range r.Input.Channels {
		in := r.Input.Channels[ch]
		out := channelStats(r.Output, ch)

		prefix := channelLabel(ch, len(r.Input.Channels))
		table.AddPeakRow(prefix+"Peak", in.Peak, out.Peak, "")
		table.AddPeakRow(prefix+"RMS", in.RMS(), out.RMS(), "")
		table.AddRow(prefix+"Zeroed samples",
			[]string{formatMetricPercent(in.ZeroedRatio(), 1), formatMetricPercent(out.ZeroedRatio(), 1)},
			"%", interpretZeroed(out.ZeroedRatio()))
	}

	fmt.Fprint(w, table.String())
	fmt.Fprintln(w)
}

// writeBlockPeaks summarises how the per-block input peaks sit against the
// threshold, which shows how much of the file the colimiter silences.
func writeBlockPeaks(w io.Writer, r *processor.ProcessingResult) {
	writeSection(w, "Block Peaks")

	s := summarisePeaks(r.BlockPeaksDB, float64(r.Config.ThresholdDB))
	if s.Count == 0 {
		fmt.Fprintln(w, "No audio blocks processed")
		return
	}

	fmt.Fprintf(w, "Blocks:         %d\n", s.Count)
	fmt.Fprintf(w, "Mean:           %s dBFS (σ %s dB)\n", formatMetricDB(s.Mean, 1), formatMetric(s.StdDev, 1))
	fmt.Fprintf(w, "10th pct:       %s dBFS\n", formatMetricDB(s.P10, 1))
	fmt.Fprintf(w, "Median:         %s dBFS\n", formatMetricDB(s.Median, 1))
	fmt.Fprintf(w, "90th pct:       %s dBFS\n", formatMetricDB(s.P90, 1))
	fmt.Fprintf(w, "Max:            %s dBFS\n", formatMetricDB(s.Max, 1))
	fmt.Fprintf(w, "Silenced:       %s%% of blocks (peak at or below threshold)\n", formatMetricPercent(s.BelowThreshold, 1))
}

// PeakSummary describes the distribution of block peaks in dBFS
type PeakSummary struct {
	Count          int
	Mean, StdDev   float64
	P10, Median    float64
	P90, Max       float64
	BelowThreshold float64 // Fraction of blocks whose peak never exceeds the threshold
}

// summarisePeaks computes the distribution of peaksDB. Blocks at or below
// thresholdDB come out of the colimiter as pure silence.
func summarisePeaks(peaksDB []float64, thresholdDB float64) PeakSummary {
	if len(peaksDB) == 0 {
		return PeakSummary{}
	}

	sorted := append([]float64(nil), peaksDB...)
	sort.Float64s(sorted)

	s := PeakSummary{Count: len(sorted)}
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	s.P10 = stat.Quantile(0.1, stat.Empirical, sorted, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	s.Max = sorted[len(sorted)-1]

	below := sort.SearchFloat64s(sorted, math.Nextafter(thresholdDB, math.Inf(1)))
	s.BelowThreshold = float64(below) / float64(len(sorted))

	return s
}

func channelStats(m processor.Measurements, ch int) processor.ChannelStats {
	if ch < len(m.Channels) {
		return m.Channels[ch]
	}
	return processor.ChannelStats{}
}

func channelLabel(ch, channels int) string {
	if channels == 2 {
		return []string{"Left ", "Right "}[ch]
	}
	if channels == 1 {
		return ""
	}
	return fmt.Sprintf("Ch %d ", ch+1)
}

func interpretZeroed(ratio float64) string {
	switch {
	case ratio >= 0.9:
		return "Almost everything below threshold"
	case ratio >= 0.5:
		return "Mostly silenced"
	case ratio >= 0.1:
		return "Quiet passages silenced"
	default:
		return "Little silenced"
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// channelName returns a human-readable channel name
func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}
