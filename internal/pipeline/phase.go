package pipeline

import "time"

// Phase is one step of a run.
type Phase int

const (
	PhaseFormat Phase = iota
	PhaseDetect
	PhaseAnalyze
	PhaseFix
	PhaseRedetect
	PhaseReconcile
	PhaseTypecheck
	PhaseSecondary
	PhaseSummary
)

// Phases lists every phase in execution order.
var Phases = []Phase{
	PhaseFormat, PhaseDetect, PhaseAnalyze, PhaseFix, PhaseRedetect,
	PhaseReconcile, PhaseTypecheck, PhaseSecondary, PhaseSummary,
}

func (p Phase) String() string {
	switch p {
	case PhaseFormat:
		return "format"
	case PhaseDetect:
		return "detect"
	case PhaseAnalyze:
		return "analyze"
	case PhaseFix:
		return "fix"
	case PhaseRedetect:
		return "redetect"
	case PhaseReconcile:
		return "reconcile"
	case PhaseTypecheck:
		return "typecheck"
	case PhaseSecondary:
		return "secondary"
	case PhaseSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// Status is the outcome of a phase.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// PhaseResult reports how a phase ended.
type PhaseResult struct {
	Phase    Phase
	Status   Status
	Detail   string
	Duration time.Duration
}

// Observer receives phase transitions. Calls come from the goroutine
// running the pipeline.
type Observer interface {
	PhaseStarted(p Phase)
	PhaseFinished(r PhaseResult)
}

// LineObserver is optionally implemented by an Observer that wants the
// output of the tool running in the current phase.
type LineObserver interface {
	PhaseOutput(p Phase, line string)
}

type nopObserver struct{}

func (nopObserver) PhaseStarted(Phase)        {}
func (nopObserver) PhaseFinished(PhaseResult) {}
