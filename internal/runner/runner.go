// Package runner executes the external tools a pipeline run shells out to:
// the formatter, the lint command, its autofixer, the type checker and the
// secondary analyzer.
//
// A non-zero exit is not an error here. Lint tools exit non-zero whenever
// they report anything, so callers decide what an exit code means. Only a
// command that could not be started (ErrLaunch) or was killed for running
// past its timeout (ErrTimeout) is reported as an error.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/magefile/mage/sh"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrLaunch means the command never ran.
	ErrLaunch = errors.New("command could not be started")
	// ErrTimeout means the command was killed after exceeding its timeout.
	ErrTimeout = errors.New("command timed out")
)

// waitDelay bounds how long Wait blocks on inherited pipes after the
// process has been killed.
const waitDelay = 2 * time.Second

// Command describes one tool invocation.
type Command struct {
	Name    string // label used in logs, e.g. "lint"
	Argv    []string
	Dir     string
	Env     []string // extra KEY=VALUE pairs on top of the current environment
	Timeout time.Duration

	// OnLine, if set, receives every output line as it arrives. It may be
	// called from two goroutines, never concurrently.
	OnLine func(line string)
}

// String renders the command line for display.
func (c Command) String() string {
	return strings.Join(c.Argv, " ")
}

// Result is the captured outcome of a command that ran.
type Result struct {
	Name     string
	Argv     []string
	Output   []byte // stdout and stderr interleaved by line, in arrival order
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// OK reports whether the command exited zero.
func (r *Result) OK() bool {
	return r != nil && r.ExitCode == 0
}

// Runner runs commands. Exec is the real implementation; pipeline tests
// substitute their own.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Exec runs commands as child processes.
type Exec struct {
	Logger *slog.Logger
}

// New returns an Exec runner.
func New(logger *slog.Logger) *Exec {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exec{Logger: logger}
}

// Run executes c and waits for it. On ErrTimeout the returned Result holds
// whatever output was captured before the kill.
func (e *Exec) Run(ctx context.Context, c Command) (*Result, error) {
	if len(c.Argv) == 0 || c.Argv[0] == "" {
		return nil, fmt.Errorf("%w: %s: empty command", ErrLaunch, c.Name)
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLaunch, c.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLaunch, c.Name, err)
	}

	res := &Result{Name: c.Name, Argv: c.Argv}
	start := time.Now()
	e.Logger.Debug("command start", "name", c.Name, "argv", c.String(), "dir", c.Dir)

	if err := cmd.Start(); err != nil {
		e.Logger.Warn("command failed to start", "name", c.Name, "argv", c.String(), "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrLaunch, c.Name, err)
	}

	var (
		mu       sync.Mutex
		combined bytes.Buffer
		outBuf   bytes.Buffer
		errBuf   bytes.Buffer
	)
	drain := func(r io.Reader, own *bytes.Buffer) func() error {
		return func() error {
			scanner := bufio.NewScanner(r)
			scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
			for scanner.Scan() {
				line := scanner.Text()
				mu.Lock()
				combined.WriteString(line)
				combined.WriteByte('\n')
				own.WriteString(line)
				own.WriteByte('\n')
				if c.OnLine != nil {
					c.OnLine(line)
				}
				mu.Unlock()
			}
			return scanner.Err()
		}
	}
	var g errgroup.Group
	g.Go(drain(stdout, &outBuf))
	g.Go(drain(stderr, &errBuf))
	readErr := g.Wait()
	waitErr := cmd.Wait()

	res.Duration = time.Since(start)
	res.Output = combined.Bytes()
	res.Stdout = outBuf.Bytes()
	res.Stderr = errBuf.Bytes()
	res.ExitCode = sh.ExitStatus(waitErr)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.Logger.Warn("command timed out", "name", c.Name, "timeout", c.Timeout)
		return res, fmt.Errorf("%w: %s after %s", ErrTimeout, c.Name, c.Timeout)
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if !sh.CmdRan(waitErr) {
		return res, fmt.Errorf("%w: %s: %w", ErrLaunch, c.Name, waitErr)
	}
	if readErr != nil && !errors.Is(readErr, os.ErrClosed) {
		e.Logger.Warn("command output truncated", "name", c.Name, "error", readErr)
	}

	e.Logger.Debug("command done", "name", c.Name, "exit", res.ExitCode, "duration", res.Duration)
	return res, nil
}

// IsCommandNotFound reports whether err means the executable does not exist.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "executable file not found") ||
		strings.Contains(msg, "no such file or directory")
}
