package processor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/linuxmatters/colimiter/internal/param"
)

const (
	// DefaultBlockSize is the number of frames handed to Process per call
	DefaultBlockSize = 512

	// MaxBlockSize bounds the frames per block
	MaxBlockSize = 65536

	// OutputSuffix is appended to the input file name for rendered output
	OutputSuffix = "-processed"
)

// SupportedChannels lists the channel layouts the colimiter accepts: stereo
// and mono, in order of preference
var SupportedChannels = []int{2, 1}

// Config holds settings for rendering files through the colimiter
type Config struct {
	// Threshold target at the start of each file, in dB
	ThresholdDB float32

	// Frames per processing block
	BlockSize int

	// Threshold changes at fixed positions in the file, sorted by time.
	// When empty the threshold follows the shared control.
	Automation []AutomationPoint

	// Suffix added to output file names
	OutputSuffix string
}

// DefaultConfig returns the default rendering configuration
func DefaultConfig() *Config {
	return &Config{
		ThresholdDB:  param.Threshold.Default,
		BlockSize:    DefaultBlockSize,
		OutputSuffix: OutputSuffix,
	}
}

// Validate checks the configuration for values the host cannot run with
func (cfg *Config) Validate() error {
	if cfg.BlockSize < 1 || cfg.BlockSize > MaxBlockSize {
		return fmt.Errorf("block size must be in [1, %d]: %d", MaxBlockSize, cfg.BlockSize)
	}
	if cfg.ThresholdDB < param.Threshold.Min || cfg.ThresholdDB > param.Threshold.Max {
		return fmt.Errorf("threshold must be in [%.0f, %.0f] dB: %.2f",
			param.Threshold.Min, param.Threshold.Max, cfg.ThresholdDB)
	}
	return nil
}

// AutomationPoint sets the threshold target at a position in the file
type AutomationPoint struct {
	At          time.Duration
	ThresholdDB float32
}

// Frame returns the sample frame the point lands on at sampleRate
func (p AutomationPoint) Frame(sampleRate int) int64 {
	return int64(p.At.Seconds()*float64(sampleRate) + 0.5)
}

// ParseAutomation reads a comma-separated list of time=threshold pairs,
// e.g. "0s=-45,1.5s=-20,2m=-60 dB". Points are returned sorted by time.
func ParseAutomation(s string) ([]AutomationPoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var points []AutomationPoint
	for _, item := range strings.Split(s, ",") {
		at, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			return nil, fmt.Errorf("automation point %q: want time=threshold", item)
		}

		d, err := time.ParseDuration(strings.TrimSpace(at))
		if err != nil {
			return nil, fmt.Errorf("automation point %q: %w", item, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("automation point %q: negative time", item)
		}

		db, err := param.Threshold.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("automation point %q: %w", item, err)
		}

		points = append(points, AutomationPoint{At: d, ThresholdDB: db})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].At < points[j].At })

	return points, nil
}

// FormatAutomation renders points in the form ParseAutomation reads
func FormatAutomation(points []AutomationPoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%s=%s", p.At, param.Threshold.Format(p.ThresholdDB))
	}
	return strings.Join(parts, ",")
}
