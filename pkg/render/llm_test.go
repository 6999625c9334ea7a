package render

import (
	"strings"
	"testing"

	"github.com/dkoosis/lintfix/pkg/pattern"
)

func TestLLM_RenderReport(t *testing.T) {
	patterns := []pattern.Pattern{
		&pattern.Summary{
			Label: "REPORT: 2 sections, all pass",
			Kind:  pattern.SummaryKindReport,
			Metrics: []pattern.SummaryItem{
				{Label: "lint", Value: "0 diags", Kind: "success"},
				{Label: "typecheck", Value: "pass", Kind: "success"},
			},
		},
	}
	out := NewLLM().Render(patterns)
	if !strings.HasPrefix(out, "REPORT:") {
		t.Errorf("expected REPORT header in output:\n%s", out)
	}
	if !strings.Contains(out, "lint: 0 diags") {
		t.Errorf("expected section summary line in output:\n%s", out)
	}
}

func TestLLM_RenderReportWithFailures(t *testing.T) {
	patterns := []pattern.Pattern{
		&pattern.Summary{
			Label: "REPORT: 3 sections, 2 fail, 1 pass",
			Kind:  pattern.SummaryKindReport,
			Metrics: []pattern.SummaryItem{
				{Label: "lint", Value: "1 err", Kind: "error"},
				{Label: "secondary", Value: "parse error", Kind: "error"},
				{Label: "metrics", Value: "4 → 1 (src)", Kind: "success"},
			},
		},
		&pattern.TestTable{
			Label:  "/src/a.ts",
			Source: "lint",
			Results: []pattern.TestTableItem{
				{Name: "no-unused-vars:3:10", Status: "fail", Details: "'foo' is defined but never used."},
			},
		},
		&pattern.Error{Source: "secondary", Message: "unexpected end of JSON input"},
		&pattern.Comparison{Label: "metrics", Changes: []pattern.ComparisonItem{
			{Label: "unused-vars", Before: 3, After: 0},
		}},
	}
	out := NewLLM().Render(patterns)
	for _, want := range []string{
		"2 fail",
		"lint: 1 err",
		"FAIL no-unused-vars:3:10",
		"ERROR unexpected end of JSON input",
		"unused-vars 3 -> 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	// The table belongs under its own section, before the next one.
	if strings.Index(out, "no-unused-vars") > strings.Index(out, "secondary:") {
		t.Errorf("lint table rendered outside its section:\n%s", out)
	}
}

func TestLLM_RenderRun(t *testing.T) {
	patterns := []pattern.Pattern{
		&pattern.Summary{
			Label: "RUN: 2 found, 1 fixed, 1 remaining (issues remain)",
			Kind:  pattern.SummaryKindRun,
			Metrics: []pattern.SummaryItem{
				{Label: "Found", Value: "2"},
				{Label: "Remaining", Value: "1"},
			},
		},
		&pattern.Comparison{Label: "Categories", Changes: []pattern.ComparisonItem{
			{Label: "unused-vars", Before: 2, After: 1},
		}},
		&pattern.Sparkline{Label: "Issues per pass", Counts: []int{2, 1}},
		&pattern.TestTable{Label: "Phases", Source: "run", Results: []pattern.TestTableItem{
			{Name: "detect", Status: "skip", Duration: "1.2s", Details: "2 issues in 1 files"},
			{Name: "typecheck", Status: "wip", Details: "no typecheck command"},
		}},
		&pattern.TestTable{Label: "/src/a.ts", Source: "remaining", Results: []pattern.TestTableItem{
			{Name: "no-unused-vars:3:5", Status: "fail", Details: "'obj' is defined but never used."},
		}},
	}
	out := NewLLM().Render(patterns)
	for _, want := range []string{
		"SCOPE: RUN: 2 found",
		"  Found: 2",
		"CATEGORIES\n  unused-vars 2 -> 1",
		"Issues per pass: 2 -> 1",
		"PHASES\n  WARN detect (1.2s)\n    2 issues in 1 files",
		"  SKIP typecheck",
		"REMAINING\n\n## /src/a.ts\n  ERR no-unused-vars:3:5 'obj' is defined but never used.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLLM_RenderDiagnosticsSortsErrorsFirst(t *testing.T) {
	patterns := []pattern.Pattern{
		&pattern.TestTable{Label: "/src/b.ts", Results: []pattern.TestTableItem{
			{Name: "eqeqeq:9:1", Status: "skip", Details: "Expected '==='"},
		}},
		&pattern.TestTable{Label: "/src/a.ts", Results: []pattern.TestTableItem{
			{Name: "prefer-const:2:1", Status: "skip", Details: "use const"},
			{Name: "@typescript-eslint/no-unused-vars:5:7", Status: "fail", Details: "unused\nsecond line"},
		}},
	}
	out := NewLLM().Render(patterns)
	want := "SCOPE: 2 files, 3 diags (1 err, 2 warn)\n" +
		"\n## /src/a.ts\n" +
		"  ERR @typescript-eslint/no-unused-vars:5:7 unused\n" +
		"  WARN prefer-const:2:1 use const\n" +
		"\n## /src/b.ts\n" +
		"  WARN eqeqeq:9:1 Expected '==='\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestLLM_RenderAnalysis(t *testing.T) {
	patterns := []pattern.Pattern{
		&pattern.Summary{
			Label:   "ANALYSIS: 1 issues in 1 files",
			Kind:    pattern.SummaryKindAnalysis,
			Metrics: []pattern.SummaryItem{{Label: "Errors", Value: "1"}},
		},
		&pattern.Leaderboard{Label: "Top Rules", Items: []pattern.LeaderboardItem{{Name: "no-undef", Metric: "1"}}},
		&pattern.TestTable{Label: "/src/a.ts", Results: []pattern.TestTableItem{
			{Name: "no-undef:1:1", Status: "fail", Details: "'x' is not defined."},
		}},
	}
	out := NewLLM().Render(patterns)
	if !strings.HasPrefix(out, "SCOPE: ANALYSIS: 1 issues in 1 files, 1 files, 1 diags (1 err)\n") {
		t.Errorf("unexpected scope line:\n%s", out)
	}
	if !strings.Contains(out, "ERR no-undef:1:1 'x' is not defined.") {
		t.Errorf("expected diagnostic in output:\n%s", out)
	}
}

func TestParseRuleLocation(t *testing.T) {
	tests := []struct {
		in        string
		rule      string
		line, col int
	}{
		{"no-unused-vars:3:10", "no-unused-vars", 3, 10},
		{"@typescript-eslint/no-unused-vars:12:1", "@typescript-eslint/no-unused-vars", 12, 1},
		{"plugin:rule:4:2", "plugin:rule", 4, 2},
		{"src/a.ts:7", "src/a.ts", 7, 0},
		{"unclassified", "unclassified", 0, 0},
	}
	for _, tt := range tests {
		rule, line, col := parseRuleLocation(tt.in)
		if rule != tt.rule || line != tt.line || col != tt.col {
			t.Errorf("parseRuleLocation(%q) = %q, %d, %d; want %q, %d, %d",
				tt.in, rule, line, col, tt.rule, tt.line, tt.col)
		}
	}
}
