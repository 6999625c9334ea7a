package pattern

// Sparkline is a word-sized trend of issue counts, oldest first: one value
// per fix pass within a run, or per recorded run.
type Sparkline struct {
	Label  string
	Counts []int
}

// Latest returns the most recent count, or 0 for an empty trend.
func (s *Sparkline) Latest() int {
	if len(s.Counts) == 0 {
		return 0
	}
	return s.Counts[len(s.Counts)-1]
}

func (s *Sparkline) Type() PatternType { return PatternTypeSparkline }
