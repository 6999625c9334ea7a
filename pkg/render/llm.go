package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dkoosis/lintfix/pkg/pattern"
)

const (
	statusFail   = "fail"
	statusSkip   = "skip"
	statusWIP    = "wip"
	detailLines  = 3
	sourceRemain = "remaining"
)

// LLM renders patterns as terse plain text for AI consumption: no ANSI
// codes, deterministic ordering, a SCOPE line first.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

type llmInput struct {
	summary     *pattern.Summary
	tables      []*pattern.TestTable
	comparisons []*pattern.Comparison
	sparklines  []*pattern.Sparkline
	errors      []*pattern.Error
}

// Render formats all patterns for LLM consumption. The first summary
// decides the layout; without one the patterns are treated as a plain
// diagnostics listing.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var in llmInput
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			if in.summary == nil {
				in.summary = v
			}
		case *pattern.TestTable:
			in.tables = append(in.tables, v)
		case *pattern.Comparison:
			in.comparisons = append(in.comparisons, v)
		case *pattern.Sparkline:
			in.sparklines = append(in.sparklines, v)
		case *pattern.Error:
			in.errors = append(in.errors, v)
		}
	}

	if in.summary == nil {
		return l.renderDiagnostics(in.tables)
	}
	switch in.summary.Kind {
	case pattern.SummaryKindReport:
		return l.renderReport(in)
	case pattern.SummaryKindRun, pattern.SummaryKindHistory:
		return l.renderRun(in)
	default:
		return l.renderAnalysis(in)
	}
}

func (l *LLM) renderRun(in llmInput) string {
	var sb strings.Builder
	sb.WriteString("SCOPE: " + in.summary.Label + "\n")
	writeMetrics(&sb, in.summary)

	for _, c := range in.comparisons {
		sb.WriteString("\n" + strings.ToUpper(c.Label) + "\n")
		for _, item := range c.Changes {
			sb.WriteString(fmt.Sprintf("  %s %d -> %d\n", item.Label, item.Before, item.After))
		}
	}
	for _, s := range in.sparklines {
		vals := make([]string, len(s.Counts))
		for i, n := range s.Counts {
			vals[i] = strconv.Itoa(n)
		}
		sb.WriteString("\n" + s.Label + ": " + strings.Join(vals, " -> ") + "\n")
	}

	var remaining []*pattern.TestTable
	for _, t := range in.tables {
		if t.Source == sourceRemain {
			remaining = append(remaining, t)
			continue
		}
		sb.WriteString("\n" + strings.ToUpper(t.Label) + "\n")
		writeItems(&sb, t.Results)
	}
	if len(remaining) > 0 {
		sb.WriteString("\nREMAINING\n")
		writeDiagnostics(&sb, remaining)
	}
	writeErrors(&sb, in.errors)
	return sb.String()
}

func (l *LLM) renderAnalysis(in llmInput) string {
	var sb strings.Builder
	sb.WriteString("SCOPE: " + in.summary.Label + ", " + diagnosticScope(in.tables) + "\n")
	writeMetrics(&sb, in.summary)
	writeDiagnostics(&sb, in.tables)
	writeErrors(&sb, in.errors)
	return sb.String()
}

func (l *LLM) renderDiagnostics(tables []*pattern.TestTable) string {
	var sb strings.Builder
	sb.WriteString("SCOPE: " + diagnosticScope(tables) + "\n")
	writeDiagnostics(&sb, tables)
	return sb.String()
}

func (l *LLM) renderReport(in llmInput) string {
	var sb strings.Builder
	sb.WriteString(in.summary.Label + "\n")

	tablesBySource := make(map[string][]*pattern.TestTable)
	for _, t := range in.tables {
		tablesBySource[t.Source] = append(tablesBySource[t.Source], t)
	}
	errorsBySource := make(map[string][]*pattern.Error)
	for _, e := range in.errors {
		errorsBySource[e.Source] = append(errorsBySource[e.Source], e)
	}
	comparisonsByLabel := make(map[string][]*pattern.Comparison)
	for _, c := range in.comparisons {
		comparisonsByLabel[c.Label] = append(comparisonsByLabel[c.Label], c)
	}

	for _, m := range in.summary.Metrics {
		sb.WriteString("\n" + m.Label + ": " + m.Value + "\n")

		for _, e := range errorsBySource[m.Label] {
			sb.WriteString("  ERROR " + e.Message + "\n")
		}
		for _, c := range comparisonsByLabel[m.Label] {
			for _, item := range c.Changes {
				sb.WriteString(fmt.Sprintf("  %s %d -> %d\n", item.Label, item.Before, item.After))
			}
		}
		for _, t := range tablesBySource[m.Label] {
			sb.WriteString("\n  " + t.Label + "\n")
			writeItems(&sb, t.Results)
		}
	}
	return sb.String()
}

func writeMetrics(sb *strings.Builder, s *pattern.Summary) {
	for _, m := range s.Metrics {
		sb.WriteString("  " + m.Label + ": " + m.Value + "\n")
	}
}

func writeItems(sb *strings.Builder, items []pattern.TestTableItem) {
	for _, item := range items {
		prefix := "  "
		switch item.Status {
		case statusFail:
			prefix = "  FAIL "
		case statusSkip:
			prefix = "  WARN "
		case statusWIP:
			prefix = "  SKIP "
		}
		sb.WriteString(prefix + item.Name)
		if item.Duration != "" {
			sb.WriteString(" (" + item.Duration + ")")
		}
		sb.WriteString("\n")
		if item.Details == "" {
			continue
		}
		lines := strings.Split(item.Details, "\n")
		for _, line := range lines[:min(len(lines), detailLines)] {
			sb.WriteString("    " + line + "\n")
		}
		if len(lines) > detailLines {
			sb.WriteString(fmt.Sprintf("    ... (%d more lines)\n", len(lines)-detailLines))
		}
	}
}

func writeErrors(sb *strings.Builder, errs []*pattern.Error) {
	for _, e := range errs {
		sb.WriteString("ERROR " + e.Source + ": " + e.Message + "\n")
	}
}

type diagEntry struct {
	file    string
	level   string
	rule    string
	line    int
	col     int
	message string
}

// writeDiagnostics lists issue tables grouped by file, errors before
// warnings, then file, line and rule order.
func writeDiagnostics(sb *strings.Builder, tables []*pattern.TestTable) {
	diags := make([]diagEntry, 0, len(tables)*4)
	for _, t := range tables {
		for _, item := range t.Results {
			rule, line, col := parseRuleLocation(item.Name)
			diags = append(diags, diagEntry{
				file:    t.Label,
				level:   llmLevel(item.Status),
				rule:    rule,
				line:    line,
				col:     col,
				message: firstLine(item.Details),
			})
		}
	}

	slices.SortStableFunc(diags, func(a, b diagEntry) int {
		if pa, pb := llmLevelPriority(a.level), llmLevelPriority(b.level); pa != pb {
			return pa - pb
		}
		if c := strings.Compare(a.file, b.file); c != 0 {
			return c
		}
		if a.line != b.line {
			return a.line - b.line
		}
		return strings.Compare(a.rule, b.rule)
	})

	currentFile := ""
	for _, d := range diags {
		if d.file != currentFile {
			currentFile = d.file
			sb.WriteString("\n## " + d.file + "\n")
		}
		if d.line > 0 {
			sb.WriteString(fmt.Sprintf("  %s %s:%d:%d %s\n", d.level, d.rule, d.line, d.col, d.message))
		} else {
			sb.WriteString(fmt.Sprintf("  %s %s %s\n", d.level, d.rule, d.message))
		}
	}
}

func diagnosticScope(tables []*pattern.TestTable) string {
	var errCount, warnCount int
	for _, t := range tables {
		for _, item := range t.Results {
			if item.Status == statusFail {
				errCount++
			} else {
				warnCount++
			}
		}
	}
	parts := []string{fmt.Sprintf("%d files", len(tables)), fmt.Sprintf("%d diags", errCount+warnCount)}
	var breakdown []string
	if errCount > 0 {
		breakdown = append(breakdown, fmt.Sprintf("%d err", errCount))
	}
	if warnCount > 0 {
		breakdown = append(breakdown, fmt.Sprintf("%d warn", warnCount))
	}
	if len(breakdown) > 0 {
		parts = append(parts, "("+strings.Join(breakdown, ", ")+")")
	}
	return strings.Join(parts, ", ")
}

// parseRuleLocation splits "rule:line:col" into components. Scoped rule
// names may contain colons, so the numbers are taken from the right.
func parseRuleLocation(name string) (rule string, line, col int) {
	rest, colStr, ok := cutLast(name, ":")
	if !ok {
		return name, 0, 0
	}
	c, err := strconv.Atoi(colStr)
	if err != nil {
		return name, 0, 0
	}
	head, lineStr, ok := cutLast(rest, ":")
	if !ok {
		return rest, c, 0
	}
	ln, err := strconv.Atoi(lineStr)
	if err != nil {
		return rest, c, 0
	}
	return head, ln, c
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func llmLevel(status string) string {
	switch status {
	case statusFail:
		return "ERR"
	case statusSkip:
		return "WARN"
	default:
		return "NOTE"
	}
}

func llmLevelPriority(level string) int {
	switch level {
	case "ERR":
		return 0
	case "WARN":
		return 1
	default:
		return 2
	}
}
