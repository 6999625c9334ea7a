package pattern

// Comparison shows issue counts before and after a run, one row per
// category or tool.
type Comparison struct {
	Label   string
	Changes []ComparisonItem
}

// ComparisonItem is one row of a Comparison.
type ComparisonItem struct {
	Label  string
	Before int
	After  int
}

// Delta is After minus Before. Negative means issues went away.
func (c ComparisonItem) Delta() int { return c.After - c.Before }

func (c *Comparison) Type() PatternType { return PatternTypeComparison }
