package pattern

// Leaderboard represents a ranked list, e.g. the rules or files with the
// most issues.
type Leaderboard struct {
	Label      string
	MetricName string
	Items      []LeaderboardItem
	Direction  string // "highest" or "lowest"
	TotalCount int    // total before filtering to top N
	ShowRank   bool
}

// LeaderboardItem is a single ranked entry.
type LeaderboardItem struct {
	Name    string
	Metric  string  // formatted value, e.g. "12 issues"
	Value   float64 // numeric value for sorting
	Rank    int
	Context string
}

func (l *Leaderboard) Type() PatternType { return PatternTypeLeaderboard }
