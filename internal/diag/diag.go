// Package diag provides the shared diagnostic sink workers write warnings
// to during a parallel export. Writes to the diagnostic stream must be
// mutex-guarded to avoid interleaving output from concurrent workers.
package diag

import (
	"fmt"
	"io"
	"sync"
)

// Sink collects warnings safely from multiple goroutines and writes them
// to an underlying writer (normally os.Stderr) one line at a time.
type Sink struct {
	mu       sync.Mutex
	w        io.Writer
	warnings []string
}

// NewSink creates a Sink writing to w. w may be nil to collect warnings
// without printing them (used by tests).
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Warn records a warning and, if a writer is attached, prints it
// immediately under the sink's lock so concurrent writers never interleave
// a single line.
func (s *Sink) Warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, msg)
	if s.w != nil {
		fmt.Fprintln(s.w, "warning:", msg)
	}
}

// Warnings returns a copy of every warning recorded so far.
func (s *Sink) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Count reports how many warnings have been recorded.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.warnings)
}
