package mapper

import (
	"fmt"
	"strings"

	"github.com/dkoosis/lintfix/internal/metrics"
	"github.com/dkoosis/lintfix/internal/report"
	"github.com/dkoosis/lintfix/pkg/diagnostic"
	"github.com/dkoosis/lintfix/pkg/pattern"
	"github.com/dkoosis/lintfix/pkg/sarif"
)

// FromReport converts a run's summary report into patterns.
// Individual section parse failures are reported as error patterns, not
// as a top-level error, so a malformed section does not hide the others.
func FromReport(sections []report.Section) ([]pattern.Pattern, error) {
	allPatterns := make([]pattern.Pattern, 0, len(sections)*2)
	toolSummaries := make([]pattern.SummaryItem, 0, len(sections))
	pass, fail, skip := 0, 0, 0

	for _, sec := range sections {
		sectionPatterns, outcome, scopeLabel := mapSection(sec)

		kind := kindSuccess
		switch outcome {
		case statusFail:
			fail++
			kind = kindError
		case statusSkip:
			skip++
			kind = kindInfo
		default:
			pass++
		}
		toolSummaries = append(toolSummaries, pattern.SummaryItem{
			Label: sec.Tool,
			Value: scopeLabel,
			Kind:  kind,
		})

		for _, p := range sectionPatterns {
			if t, ok := p.(*pattern.TestTable); ok {
				t.Source = sec.Tool
			}
		}
		allPatterns = append(allPatterns, sectionPatterns...)
	}

	label := fmt.Sprintf("REPORT: %d sections", len(sections))
	if fail == 0 {
		label += ", all pass"
	} else {
		parts := []string{fmt.Sprintf("%d fail", fail)}
		if pass > 0 {
			parts = append(parts, fmt.Sprintf("%d pass", pass))
		}
		label += ", " + strings.Join(parts, ", ")
	}
	if skip > 0 {
		label += fmt.Sprintf(" (%d skipped)", skip)
	}

	topSummary := &pattern.Summary{
		Label:   label,
		Kind:    pattern.SummaryKindReport,
		Metrics: toolSummaries,
	}
	return append([]pattern.Pattern{topSummary}, allPatterns...), nil
}

// mapSection returns the section's patterns, its outcome (pass, fail or
// skip) and a one-line label.
func mapSection(sec report.Section) ([]pattern.Pattern, string, string) {
	switch sec.Format {
	case report.FormatSARIF:
		return mapSARIFSection(sec)
	case report.FormatJSON:
		return mapJSONSection(sec)
	case report.FormatMetrics:
		return mapMetricsSection(sec)
	case report.FormatText:
		if sec.Tool == "lint" {
			return mapLintSection(sec)
		}
		return mapTextSection(sec)
	default:
		return sectionError(sec.Tool, fmt.Errorf("unknown format %q", sec.Format)),
			statusFail, fmt.Sprintf("unknown format %q", sec.Format)
	}
}

// sectionError emits a visible error pattern for a section that failed to parse.
func sectionError(tool string, err error) []pattern.Pattern {
	return []pattern.Pattern{
		&pattern.Error{Source: tool, Message: err.Error()},
	}
}

func mapSARIFSection(sec report.Section) ([]pattern.Pattern, string, string) {
	doc, err := sarif.ReadBytes(sec.Content)
	if err != nil {
		return sectionError(sec.Tool, err), statusFail, fmt.Sprintf("parse error: %v", err)
	}
	return diagnosticsSection(diagnostic.FromSARIF(doc).Diagnostics)
}

func mapJSONSection(sec report.Section) ([]pattern.Pattern, string, string) {
	res, err := diagnostic.ParseJSON(sec.Content)
	if err != nil {
		return sectionError(sec.Tool, err), statusFail, fmt.Sprintf("parse error: %v", err)
	}
	return diagnosticsSection(res.Diagnostics)
}

// mapLintSection parses the saved lint output. The delimiter status decides
// the outcome; the content only supplies the issues.
func mapLintSection(sec report.Section) ([]pattern.Pattern, string, string) {
	res, _, err := diagnostic.ParseOutput(sec.Content, diagnostic.Options{})
	if err != nil {
		return sectionError(sec.Tool, err), statusFail, fmt.Sprintf("parse error: %v", err)
	}
	patterns, outcome, label := diagnosticsSection(res.Diagnostics)
	if sec.Status != "" {
		outcome = sec.Status
	}
	return patterns, outcome, label
}

func diagnosticsSection(diags []*diagnostic.Diagnostic) ([]pattern.Pattern, string, string) {
	if len(diags) == 0 {
		return nil, statusPass, "0 issues"
	}
	var errs, warns int
	for _, d := range diags {
		if d.Severity == diagnostic.SeverityError {
			errs++
		} else {
			warns++
		}
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, fmt.Sprintf("%d err", errs))
	}
	if warns > 0 {
		parts = append(parts, fmt.Sprintf("%d warn", warns))
	}
	outcome := statusPass
	if errs > 0 {
		outcome = statusFail
	}
	return FromDiagnostics(diags), outcome, strings.Join(parts, ", ")
}

func mapMetricsSection(sec report.Section) ([]pattern.Pattern, string, string) {
	m, err := metrics.Parse(sec.Content)
	if err != nil {
		return sectionError(sec.Tool, err), statusFail, fmt.Sprintf("parse error: %v", err)
	}

	outcome := statusPass
	if len(m.Regressions) > 0 {
		outcome = statusFail
	}

	var (
		items []pattern.ComparisonItem
		label string
	)
	for _, row := range m.Rows {
		if len(row.Values) < 2 {
			continue
		}
		before, after := row.Values[0], row.Values[1]
		if row.Name == "total" {
			label = fmt.Sprintf("%.0f → %.0f (%s)", before, after, m.Scope)
			continue
		}
		if before == 0 && after == 0 {
			continue
		}
		items = append(items, pattern.ComparisonItem{
			Label:  row.Name,
			Before: int(before),
			After:  int(after),
		})
	}
	if len(m.Regressions) > 0 {
		label += fmt.Sprintf(", %d regressions", len(m.Regressions))
	}

	var patterns []pattern.Pattern
	if len(items) > 0 {
		patterns = append(patterns, &pattern.Comparison{Label: sec.Tool, Changes: items})
	}
	if len(m.Regressions) > 0 {
		regressions := make([]pattern.TestTableItem, 0, len(m.Regressions))
		for _, r := range m.Regressions {
			regressions = append(regressions, pattern.TestTableItem{
				Name:    fmt.Sprintf("regression: %s %s", r.Group, r.Metric),
				Status:  statusFail,
				Details: fmt.Sprintf("%.0f→%.0f (+%.0f)", r.From, r.To, r.To-r.From),
			})
		}
		patterns = append(patterns, &pattern.TestTable{
			Label:   sec.Tool + " regressions",
			Results: regressions,
		})
	}
	return patterns, outcome, label
}

// mapTextSection handles text sections with explicit pass/fail/skip status.
// Content is opaque; its first line is shown.
func mapTextSection(sec report.Section) ([]pattern.Pattern, string, string) {
	status := sec.Status
	if status == "" {
		status = statusPass
	}
	label := status
	if len(sec.Content) > 0 {
		label = status + ": " + firstLine(string(sec.Content), 60)
	}
	return nil, status, label
}
