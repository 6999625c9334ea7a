package mapper

import (
	"fmt"

	"github.com/dkoosis/lintfix/internal/history"
	"github.com/dkoosis/lintfix/pkg/pattern"
)

// HistoryTrend returns the remaining-issue trend across runs, or nil when
// there are fewer than two runs to compare.
func HistoryTrend(runs []history.Run) *pattern.Sparkline {
	if len(runs) < 2 {
		return nil
	}
	counts := make([]int, len(runs))
	for i, r := range runs {
		counts[i] = r.Remaining
	}
	return &pattern.Sparkline{Label: "Remaining per run", Counts: counts}
}

// FromHistory lists recorded runs, oldest first.
func FromHistory(runs []history.Run) []pattern.Pattern {
	label := "HISTORY: no runs recorded"
	var metrics []pattern.SummaryItem
	if n := len(runs); n > 0 {
		first, last := runs[0], runs[n-1]
		label = fmt.Sprintf("HISTORY: %s, remaining %d → %d", plural(n, "run"), first.Remaining, last.Remaining)

		best := first
		for _, r := range runs[1:] {
			if r.Remaining < best.Remaining {
				best = r
			}
		}
		kind := kindSuccess
		if last.Remaining > first.Remaining {
			kind = kindError
		}
		metrics = []pattern.SummaryItem{
			{Label: "Latest", Value: fmt.Sprint(last.Remaining), Kind: kind},
			{Label: "Best", Value: fmt.Sprintf("%d (%s)", best.Remaining, best.Started.Local().Format("2006-01-02 15:04")), Kind: kindInfo},
		}
	}
	patterns := []pattern.Pattern{&pattern.Summary{Label: label, Kind: pattern.SummaryKindHistory, Metrics: metrics}}
	if len(runs) == 0 {
		return patterns
	}
	if s := HistoryTrend(runs); s != nil {
		patterns = append(patterns, s)
	}

	items := make([]pattern.TestTableItem, len(runs))
	for i, r := range runs {
		status := statusPass
		if r.ExitCode != 0 {
			status = statusFail
		}
		items[i] = pattern.TestTableItem{
			Name:     r.Started.Local().Format("2006-01-02 15:04:05"),
			Status:   status,
			Duration: formatDuration(r.Duration),
			Details:  fmt.Sprintf("found %d, fixed %d, remaining %d", r.Found, r.Fixed, r.Remaining),
		}
	}
	return append(patterns, &pattern.TestTable{Label: "Runs", Source: "history", Results: items})
}
