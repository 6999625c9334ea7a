// Package logsink owns the log files a pipeline run produces. A Sink is
// opened once per run, handed to every phase, and closed at the end; each
// category maps to one timestamped file in the log directory.
package logsink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category names a kind of log.
type Category string

const (
	Summary     Category = "summary"
	Format      Category = "format"
	Detect      Category = "detect"
	Autofix     Category = "autofix"
	DetectAfter Category = "detect-after"
	Typecheck   Category = "typecheck"
	Secondary   Category = "secondary"
	Events      Category = "events"
)

// StampFormat is the run timestamp embedded in file names.
const StampFormat = "20060102-150405"

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("log sink closed")

// Sink writes per-category log files for one run.
type Sink struct {
	dir   string
	stamp string

	mu     sync.Mutex
	open   map[Category]*os.File
	paths  []string
	seen   map[string]bool
	closed bool
}

// Open creates dir if needed and returns a Sink stamping file names with
// start.
func Open(dir string, start time.Time) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &Sink{
		dir:   dir,
		stamp: start.Format(StampFormat),
		open:  make(map[Category]*os.File),
		seen:  make(map[string]bool),
	}, nil
}

// Dir returns the log directory.
func (s *Sink) Dir() string { return s.dir }

// Stamp returns the run timestamp used in file names.
func (s *Sink) Stamp() string { return s.stamp }

// Path returns the file a category is written to.
func (s *Sink) Path(c Category) string {
	return s.PathFor(string(c), ".log")
}

// PathFor returns a run-stamped path in the log directory for an artifact
// that is not a category log, e.g. a SARIF export.
func (s *Sink) PathFor(name, ext string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s%s", name, s.stamp, ext))
}

// Writer returns an append-mode writer for c, opening the file on first
// use. The file stays open until Close.
func (s *Sink) Writer(c Category) (io.Writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if f, ok := s.open[c]; ok {
		return f, nil
	}
	path := s.Path(c)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s log: %w", c, err)
	}
	s.open[c] = f
	s.track(path)
	return f, nil
}

// Save writes data as the complete content of c's file and closes it, so
// that later phases may rewrite it in place. It returns the path.
func (s *Sink) Save(c Category, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if f, ok := s.open[c]; ok {
		_ = f.Close()
		delete(s.open, c)
	}
	path := s.Path(c)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s log: %w", c, err)
	}
	s.track(path)
	return path, nil
}

// Track records an artifact written outside the sink so it is listed in
// Paths.
func (s *Sink) Track(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(path)
}

func (s *Sink) track(path string) {
	if !s.seen[path] {
		s.seen[path] = true
		s.paths = append(s.paths, path)
	}
}

// Paths lists every file produced so far, in creation order.
func (s *Sink) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// Close flushes and closes every open file. It is safe to call twice.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for c, f := range s.open {
		if err := f.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("sync %s log: %w", c, err))
		}
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s log: %w", c, err))
		}
	}
	s.open = nil
	return errors.Join(errs...)
}
