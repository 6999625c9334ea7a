package pattern

// SummaryKind tells renderers which layout a summary heads.
type SummaryKind string

const (
	SummaryKindRun      SummaryKind = "run"
	SummaryKindAnalysis SummaryKind = "analysis"
	SummaryKindReport   SummaryKind = "report"
	SummaryKindHistory  SummaryKind = "history"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string
	Kind    SummaryKind
	Metrics []SummaryItem
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string // e.g. "Found", "Fixed", "Remaining"
	Value string
	Kind  string // "success", "error", "warning", "info"; affects coloring
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
