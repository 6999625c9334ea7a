package mapper

import (
	"testing"

	"github.com/dkoosis/lintfix/internal/metrics"
	"github.com/dkoosis/lintfix/internal/report"
	"github.com/dkoosis/lintfix/pkg/classify"
	"github.com/dkoosis/lintfix/pkg/pattern"
)

const lintOutput = `/src/app.ts
  3:10  error    'foo' is defined but never used  @typescript-eslint/no-unused-vars
  7:1   warning  Unexpected console statement     no-console

/src/util.ts
  1:1  error  Unexpected any  @typescript-eslint/no-explicit-any
`

func TestFromReport_TextPassSection(t *testing.T) {
	sections := []report.Section{
		{Tool: "typecheck", Format: "text", Status: "pass", Content: []byte("No errors.")},
	}
	patterns, err := FromReport(sections)
	if err != nil {
		t.Fatal(err)
	}
	sum, ok := patterns[0].(*pattern.Summary)
	if !ok {
		t.Fatalf("expected Summary, got %T", patterns[0])
	}
	if sum.Metrics[0].Kind != "success" {
		t.Errorf("expected success kind, got %q", sum.Metrics[0].Kind)
	}
	if sum.Metrics[0].Value != "pass: No errors." {
		t.Errorf("unexpected label %q", sum.Metrics[0].Value)
	}
}

func TestFromReport_LintSection(t *testing.T) {
	sections := []report.Section{
		{Tool: "lint", Format: "text", Status: "fail", Content: []byte(lintOutput)},
	}
	patterns, err := FromReport(sections)
	if err != nil {
		t.Fatal(err)
	}
	sum := patterns[0].(*pattern.Summary)
	if sum.Metrics[0].Kind != "error" {
		t.Errorf("failed lint section should be marked error, got %q", sum.Metrics[0].Kind)
	}
	if sum.Metrics[0].Value != "2 err, 1 warn" {
		t.Errorf("unexpected label %q", sum.Metrics[0].Value)
	}

	var tables []*pattern.TestTable
	for _, p := range patterns {
		if tt, ok := p.(*pattern.TestTable); ok {
			tables = append(tables, tt)
		}
	}
	if len(tables) != 2 {
		t.Fatalf("expected one table per file, got %d", len(tables))
	}
	if tables[0].Label != "/src/app.ts" || tables[0].Source != "lint" {
		t.Errorf("unexpected first table %q from %q", tables[0].Label, tables[0].Source)
	}
	if got := tables[0].Results[0].Name; got != "@typescript-eslint/no-unused-vars:3:10" {
		t.Errorf("unexpected row name %q", got)
	}
}

func TestFromReport_SARIFSection(t *testing.T) {
	sarifDoc := `{"version":"2.1.0","runs":[{"tool":{"driver":{"name":"eslint"}},"results":[]}]}`
	sections := []report.Section{
		{Tool: "remaining", Format: "sarif", Content: []byte(sarifDoc)},
	}
	patterns, err := FromReport(sections)
	if err != nil {
		t.Fatal(err)
	}
	sum := patterns[0].(*pattern.Summary)
	if sum.Metrics[0].Value != "0 issues" {
		t.Errorf("unexpected label %q", sum.Metrics[0].Value)
	}
}

func TestFromReport_MalformedSectionReportsError(t *testing.T) {
	sections := []report.Section{
		{Tool: "remaining", Format: "sarif", Content: []byte("not valid json{{{")},
	}
	patterns, err := FromReport(sections)
	if err != nil {
		t.Fatal("FromReport should not return top-level error for section failures")
	}
	sum := patterns[0].(*pattern.Summary)
	if sum.Metrics[0].Kind != "error" {
		t.Errorf("malformed section should be marked error, got %q", sum.Metrics[0].Kind)
	}
	if _, ok := patterns[1].(*pattern.Error); !ok {
		t.Errorf("expected Error pattern, got %T", patterns[1])
	}
}

func TestFromReport_MetricsSection(t *testing.T) {
	m := metrics.FromCategories("categories",
		map[classify.Category]int{classify.UnusedVars: 4, classify.Other: 1},
		map[classify.Category]int{classify.UnusedVars: 1, classify.Other: 2},
	)
	data, err := m.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	patterns, err := FromReport([]report.Section{{Tool: "metrics", Format: "metrics", Content: data}})
	if err != nil {
		t.Fatal(err)
	}
	sum := patterns[0].(*pattern.Summary)
	if sum.Metrics[0].Kind != "error" {
		t.Errorf("regression should fail the section, got %q", sum.Metrics[0].Kind)
	}
	if want := "5 → 3 (categories), 1 regressions"; sum.Metrics[0].Value != want {
		t.Errorf("label = %q, want %q", sum.Metrics[0].Value, want)
	}
	cmp, ok := patterns[1].(*pattern.Comparison)
	if !ok {
		t.Fatalf("expected Comparison, got %T", patterns[1])
	}
	if len(cmp.Changes) != 2 {
		t.Errorf("expected only non-empty categories, got %d", len(cmp.Changes))
	}
}

func TestFromReport_Label(t *testing.T) {
	sections := []report.Section{
		{Tool: "lint", Format: "text", Status: "pass"},
		{Tool: "typecheck", Format: "text", Status: "fail", Content: []byte("error TS2304")},
		{Tool: "secondary", Format: "text", Status: "skip"},
	}
	patterns, err := FromReport(sections)
	if err != nil {
		t.Fatal(err)
	}
	sum := patterns[0].(*pattern.Summary)
	if want := "REPORT: 3 sections, 1 fail, 1 pass (1 skipped)"; sum.Label != want {
		t.Errorf("label = %q, want %q", sum.Label, want)
	}
}
