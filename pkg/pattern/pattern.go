// Package pattern defines the semantic data types lintfix renders: run
// summaries, rankings, per-file issue tables, trends and before/after
// comparisons. Patterns are pure data; renderers decide presentation.
package pattern

// PatternType identifies the kind of visualization pattern.
type PatternType string

const (
	PatternTypeSummary     PatternType = "summary"
	PatternTypeLeaderboard PatternType = "leaderboard"
	PatternTypeTestTable   PatternType = "table"
	PatternTypeSparkline   PatternType = "sparkline"
	PatternTypeComparison  PatternType = "comparison"
	PatternTypeError       PatternType = "error"
)

// Pattern is the interface all visualization patterns implement.
type Pattern interface {
	Type() PatternType
}

// Error reports input that could not be mapped.
type Error struct {
	Source  string
	Message string
}

func (e *Error) Type() PatternType { return PatternTypeError }
