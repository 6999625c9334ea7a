// Package mapper converts lintfix results into visualization patterns.
package mapper

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dkoosis/lintfix/pkg/classify"
	"github.com/dkoosis/lintfix/pkg/diagnostic"
	"github.com/dkoosis/lintfix/pkg/pattern"
)

const (
	statusFail = "fail"
	statusPass = "pass"
	statusSkip = "skip"
	statusWIP  = "wip"

	kindSuccess = "success"
	kindError   = "error"
	kindWarning = "warning"
	kindInfo    = "info"
)

// maxLeaders bounds every leaderboard.
const maxLeaders = 10

// FromDiagnostics returns a file leaderboard (when more than one file is
// involved) followed by one issue table per file, in first-seen order.
func FromDiagnostics(diags []*diagnostic.Diagnostic) []pattern.Pattern {
	var patterns []pattern.Pattern
	if lb := fileLeaderboard(diags); lb != nil {
		patterns = append(patterns, lb)
	}
	for _, t := range fileTables(diags) {
		patterns = append(patterns, t)
	}
	return patterns
}

// FromAnalysis converts a parse-only analysis into patterns: a summary of
// severities and categories, the rule leaderboard, then the issues.
func FromAnalysis(a *classify.Analysis, diags []*diagnostic.Diagnostic) []pattern.Pattern {
	label := fmt.Sprintf("ANALYSIS: %d issues in %d files", a.Total, len(a.ByFile))
	metrics := []pattern.SummaryItem{
		countItem("Errors", a.ErrorCount, kindError),
		countItem("Warnings", a.WarningCount, kindWarning),
	}
	counts := a.Counts()
	for _, c := range classify.Categories {
		kind := kindInfo
		if c.Fixable() && counts[c] > 0 {
			kind = kindWarning
		}
		metrics = append(metrics, pattern.SummaryItem{Label: c.String(), Value: fmt.Sprint(counts[c]), Kind: kind})
	}

	patterns := []pattern.Pattern{&pattern.Summary{
		Label:   label,
		Kind:    pattern.SummaryKindAnalysis,
		Metrics: metrics,
	}}
	if lb := ruleLeaderboard(a); lb != nil {
		patterns = append(patterns, lb)
	}
	return append(patterns, FromDiagnostics(diags)...)
}

func countItem(label string, n int, kindIfAny string) pattern.SummaryItem {
	kind := kindSuccess
	if n > 0 {
		kind = kindIfAny
	}
	return pattern.SummaryItem{Label: label, Value: fmt.Sprint(n), Kind: kind}
}

func ruleLeaderboard(a *classify.Analysis) *pattern.Leaderboard {
	top := a.TopRules(maxLeaders)
	if len(top) == 0 {
		return nil
	}
	items := make([]pattern.LeaderboardItem, len(top))
	for i, rc := range top {
		items[i] = pattern.LeaderboardItem{
			Name:   rc.Rule,
			Metric: plural(rc.Count, "issue"),
			Value:  float64(rc.Count),
			Rank:   i + 1,
		}
	}
	return &pattern.Leaderboard{
		Label:      "Top Rules",
		MetricName: "Issues",
		Items:      items,
		Direction:  "highest",
		TotalCount: len(a.ByRule),
		ShowRank:   true,
	}
}

func fileLeaderboard(diags []*diagnostic.Diagnostic) *pattern.Leaderboard {
	counts := make(map[string]int)
	var files []string
	for _, d := range diags {
		if counts[d.File] == 0 {
			files = append(files, d.File)
		}
		counts[d.File]++
	}
	if len(files) <= 1 {
		return nil
	}
	slices.SortStableFunc(files, func(a, b string) int { return counts[b] - counts[a] })
	total := len(files)
	if len(files) > maxLeaders {
		files = files[:maxLeaders]
	}

	items := make([]pattern.LeaderboardItem, len(files))
	for i, f := range files {
		items[i] = pattern.LeaderboardItem{
			Name:    displayName(f),
			Metric:  plural(counts[f], "issue"),
			Value:   float64(counts[f]),
			Rank:    i + 1,
			Context: f,
		}
	}
	return &pattern.Leaderboard{
		Label:      "Files with Most Issues",
		MetricName: "Issues",
		Items:      items,
		Direction:  "highest",
		TotalCount: total,
		ShowRank:   true,
	}
}

// fileTables groups diags by file. Within a file errors come first, then
// line order.
func fileTables(diags []*diagnostic.Diagnostic) []*pattern.TestTable {
	byFile := make(map[string][]*diagnostic.Diagnostic)
	var files []string
	for _, d := range diags {
		if _, ok := byFile[d.File]; !ok {
			files = append(files, d.File)
		}
		byFile[d.File] = append(byFile[d.File], d)
	}

	tables := make([]*pattern.TestTable, 0, len(files))
	for _, f := range files {
		group := slices.Clone(byFile[f])
		slices.SortStableFunc(group, func(a, b *diagnostic.Diagnostic) int {
			if a.Severity != b.Severity {
				return int(b.Severity) - int(a.Severity)
			}
			if a.Line != b.Line {
				return a.Line - b.Line
			}
			return a.Column - b.Column
		})
		items := make([]pattern.TestTableItem, len(group))
		for i, d := range group {
			items[i] = pattern.TestTableItem{
				Name:    fmt.Sprintf("%s:%d:%d", ruleName(d), d.Line, d.Column),
				Status:  severityStatus(d.Severity),
				Details: d.Message,
			}
		}
		tables = append(tables, &pattern.TestTable{Label: f, Results: items})
	}
	return tables
}

func ruleName(d *diagnostic.Diagnostic) string {
	if d.Unclassified() {
		return "unclassified"
	}
	return d.RuleID
}

func severityStatus(s diagnostic.Severity) string {
	if s == diagnostic.SeverityError {
		return statusFail
	}
	return statusSkip
}

// displayName shortens a path to its parent directory and base name.
func displayName(path string) string {
	name := filepath.Base(path)
	if dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator) {
		name = filepath.Join(filepath.Base(dir), name)
	}
	return name
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// firstLine returns the first line of s, cut to limit runes.
func firstLine(s string, limit int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > limit {
		s = string(r[:limit]) + "…"
	}
	return s
}
