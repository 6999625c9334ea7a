package mapper

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkoosis/lintfix/internal/pipeline"
	"github.com/dkoosis/lintfix/pkg/classify"
	"github.com/dkoosis/lintfix/pkg/pattern"
)

// FromRun converts a pipeline run into patterns: the run summary, the
// category comparison, the issue trend across passes, the phase table,
// fixes that did not apply, and finally the remaining issues.
func FromRun(sum *pipeline.RunSummary) []pattern.Pattern {
	patterns := []pattern.Pattern{runSummary(sum)}

	if c := categoryComparison(sum); c != nil {
		patterns = append(patterns, c)
	}
	if len(sum.History) > 1 {
		patterns = append(patterns, &pattern.Sparkline{Label: "Issues per pass", Counts: sum.History})
	}
	patterns = append(patterns, phaseTable(sum))
	if t := unpatchedTable(sum); t != nil {
		patterns = append(patterns, t)
	}
	for _, t := range fileTables(sum.RemainingDiagnostics) {
		t.Source = "remaining"
		patterns = append(patterns, t)
	}
	return patterns
}

func runSummary(sum *pipeline.RunSummary) *pattern.Summary {
	verdict := "clean"
	if sum.ExitCode() != 0 {
		verdict = "issues remain"
		if sum.Remaining == 0 {
			verdict = "typecheck failed"
		}
	}
	label := fmt.Sprintf("RUN: %d found, %d fixed, %d remaining (%s)", sum.TotalBefore, sum.Fixed, sum.Remaining, verdict)

	remainingKind := kindSuccess
	if sum.Remaining > 0 {
		remainingKind = kindError
	}
	metrics := []pattern.SummaryItem{
		{Label: "Found", Value: fmt.Sprint(sum.TotalBefore), Kind: kindInfo},
		{Label: "Fixed", Value: fmt.Sprint(sum.Fixed), Kind: kindSuccess},
		{Label: "Patched", Value: fmt.Sprintf("%d of %d attempted", sum.Patched, len(sum.Attempts)), Kind: kindInfo},
		{Label: "Remaining", Value: fmt.Sprint(sum.Remaining), Kind: remainingKind},
	}
	if r, ok := sum.Phase(pipeline.PhaseTypecheck); ok && r.Status != pipeline.StatusSkipped {
		item := pattern.SummaryItem{Label: "Typecheck", Value: statusPass, Kind: kindSuccess}
		if sum.TypecheckFailed {
			item.Value, item.Kind = statusFail, kindError
		}
		metrics = append(metrics, item)
	}
	if sum.SecondarySkipped {
		metrics = append(metrics, pattern.SummaryItem{Label: "Secondary", Value: "skipped", Kind: kindWarning})
	}
	if sum.Backup != "" {
		metrics = append(metrics, pattern.SummaryItem{Label: "Backup", Value: filepath.Base(sum.Backup), Kind: kindInfo})
	}
	return &pattern.Summary{Label: label, Kind: pattern.SummaryKindRun, Metrics: metrics}
}

// categoryComparison lists every category that was non-empty before or
// after the run.
func categoryComparison(sum *pipeline.RunSummary) *pattern.Comparison {
	after := sum.AfterCounts()
	var items []pattern.ComparisonItem
	for _, c := range classify.Categories {
		b, a := sum.Categories[c], after[c]
		if a == 0 && b == 0 {
			continue
		}
		items = append(items, pattern.ComparisonItem{Label: c.String(), Before: b, After: a})
	}
	if len(items) == 0 {
		return nil
	}
	return &pattern.Comparison{Label: "Categories", Changes: items}
}

func phaseTable(sum *pipeline.RunSummary) *pattern.TestTable {
	items := make([]pattern.TestTableItem, 0, len(sum.Phases))
	for _, r := range sum.Phases {
		item := pattern.TestTableItem{
			Name:    r.Phase.String(),
			Status:  phaseStatus(r.Status),
			Details: r.Detail,
		}
		if r.Duration > 0 {
			item.Duration = formatDuration(r.Duration)
		}
		items = append(items, item)
	}
	return &pattern.TestTable{Label: "Phases", Source: "run", Results: items}
}

func phaseStatus(s pipeline.Status) string {
	switch s {
	case pipeline.StatusOK:
		return statusPass
	case pipeline.StatusFail:
		return statusFail
	case pipeline.StatusSkipped:
		return statusWIP
	default:
		return statusSkip
	}
}

func unpatchedTable(sum *pipeline.RunSummary) *pattern.TestTable {
	failed := sum.FailedAttempts()
	if len(failed) == 0 {
		return nil
	}
	items := make([]pattern.TestTableItem, len(failed))
	for i, a := range failed {
		items[i] = pattern.TestTableItem{
			Name:    fmt.Sprintf("%s:%d", a.FilePath, a.Diagnostic.Line),
			Status:  statusSkip,
			Details: strings.TrimSpace(a.Reason),
		}
	}
	return &pattern.TestTable{Label: "Not patched", Source: "fix", Results: items}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Round(100*time.Millisecond).Seconds())
}
