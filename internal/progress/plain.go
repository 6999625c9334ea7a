package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/dkoosis/lintfix/internal/pipeline"
)

// Plain reports phases as one line each, for CI logs and pipes.
type Plain struct {
	Console *Console
	// Stream echoes tool output, prefixed with the phase name.
	Stream bool

	mu sync.Mutex
}

// NewPlain returns a Plain observer printing through c.
func NewPlain(c *Console, stream bool) *Plain {
	return &Plain{Console: c, Stream: stream}
}

func (p *Plain) PhaseStarted(ph pipeline.Phase) {
	if !p.Stream {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Console.Info("%s", ph)
}

func (p *Plain) PhaseFinished(r pipeline.PhaseResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := r.Phase.String()
	if r.Duration > 0 {
		msg += " (" + formatDuration(r.Duration) + ")"
	}
	if r.Detail != "" {
		msg += ": " + r.Detail
	}
	switch r.Status {
	case pipeline.StatusOK:
		p.Console.Success("%s", msg)
	case pipeline.StatusWarn:
		p.Console.Warning("%s", msg)
	case pipeline.StatusFail:
		p.Console.Error("%s", msg)
	default:
		p.Console.Dim("%s", msg)
	}
}

func (p *Plain) PhaseOutput(ph pipeline.Phase, line string) {
	if !p.Stream {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.Console.out, "[%s] %s\n", ph, line)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	// Tenths of a second, e.g. 1.2s not 1.34s.
	return fmt.Sprintf("%.1fs", d.Round(100*time.Millisecond).Seconds())
}
