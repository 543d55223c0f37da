package ui

// ProgressMsg reports rendering progress of the current file
type ProgressMsg struct {
	Progress    float64 // 0.0 to 1.0
	ThresholdDB float32 // Threshold target in effect
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing
type FileCompleteMsg struct {
	FileIndex    int
	OutputPath   string
	InputPeakDB  float64
	OutputPeakDB float64
	ZeroedRatio  float64 // Fraction of output samples silenced
	Error        error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}

// PlaybackDoneMsg indicates playback reached the end of the file
type PlaybackDoneMsg struct{}

// tickMsg drives the meter refresh
type tickMsg struct{}
