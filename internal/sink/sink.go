// Package sink implements the shared append-only log sink.
//
// A Sink is one open append-mode file plus one mutex guarding it. All
// workers borrow the same Sink to append lines; the supervisor owns its
// lifecycle and closes it exactly once after every worker has been joined.
// Each appended line is written whole under the lock, so lines from
// concurrent workers never interleave mid-line.
package sink

import (
	"io"
	"os"
	"sync"

	"github.com/tallylog/tallylog/internal/errors"
)

// Sink is the shared destination all workers append log lines to.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	path   string
	closed bool
}

// Open opens path in append mode and wraps it in a Sink.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.IOError("SINK_OPEN", "Cannot open log file for append", err)
	}

	return &Sink{
		w:      f,
		closer: f,
		path:   path,
	}, nil
}

// New wraps an arbitrary writer in a Sink. Used by tests to capture
// output without touching the filesystem.
func New(w io.Writer) *Sink {
	return &Sink{w: w}
}

// WriteLine appends one newline-terminated line under the lock. The line
// is written with a single Write call so it is atomic with respect to
// other writers. The lock is released on every path, including failure.
func (s *Sink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.ErrSinkClosed
	}

	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		return errors.IOError("SINK_WRITE", "Write to log sink failed", err)
	}
	return nil
}

// Path returns the file path backing the sink, if any.
func (s *Sink) Path() string {
	return s.path
}

// Close closes the underlying file. Safe to call more than once; only
// the first call closes the file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return errors.IOError("SINK_CLOSE", "Closing log sink failed", err)
	}
	return nil
}
