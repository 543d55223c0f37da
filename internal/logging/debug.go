package logging

import (
	"fmt"
	"os"
	"sync"
)

// DebugLog writes printf-style trace lines to a file. A nil *DebugLog
// discards everything, so callers never need to check whether --debug was
// given. Never call it from the audio goroutine.
type DebugLog struct {
	mu sync.Mutex
	f  *os.File
}

// OpenDebugLog creates (or truncates) the debug log at path
func OpenDebugLog(path string) (*DebugLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create debug log: %w", err)
	}
	return &DebugLog{f: f}, nil
}

// Printf appends one line
func (l *DebugLog) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.f, format+"\n", args...)
}

// Close flushes and closes the file
func (l *DebugLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
