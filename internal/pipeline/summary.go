package pipeline

import (
	"time"

	"github.com/dkoosis/lintfix/pkg/classify"
	"github.com/dkoosis/lintfix/pkg/diagnostic"
	"github.com/dkoosis/lintfix/pkg/patch"
)

// RunSummary is the outcome of one pipeline run.
type RunSummary struct {
	TotalBefore int
	TotalAfter  int
	Fixed       int // max(0, TotalBefore-TotalAfter)
	Remaining   int
	Patched     int // successful source patches across all passes
	Iterations  int

	// History holds the issue count of every detection, in order.
	History []int

	Attempts []patch.FixAttempt

	// Categories counts the first detection per category.
	Categories map[classify.Category]int
	Before     *classify.Analysis
	After      *classify.Analysis

	// RemainingDiagnostics is the final detection.
	RemainingDiagnostics []*diagnostic.Diagnostic

	Phases  []PhaseResult
	Backup  string // reconciler backup of the detect log, if one was written
	Summary string // summary log path

	LogFiles         []string
	TypecheckFailed  bool
	SecondarySkipped bool
	Duration         time.Duration
}

// ExitCode is the process exit status the run maps to.
func (s *RunSummary) ExitCode() int {
	if s.Remaining > 0 || s.TypecheckFailed {
		return 1
	}
	return 0
}

// AfterCounts returns the final per-category counts.
func (s *RunSummary) AfterCounts() map[classify.Category]int {
	if s.After == nil {
		return s.Categories
	}
	return s.After.Counts()
}

// FailedAttempts returns the patch attempts that did not apply.
func (s *RunSummary) FailedAttempts() []patch.FixAttempt {
	var out []patch.FixAttempt
	for _, a := range s.Attempts {
		if !a.Success {
			out = append(out, a)
		}
	}
	return out
}

// Phase returns the last recorded result of p, if it ran or was skipped.
func (s *RunSummary) Phase(p Phase) (PhaseResult, bool) {
	for i := len(s.Phases) - 1; i >= 0; i-- {
		if s.Phases[i].Phase == p {
			return s.Phases[i], true
		}
	}
	return PhaseResult{}, false
}

func fixedCount(before, after int) int {
	return max(0, before-after)
}
