package mapper

import (
	"testing"
	"time"

	"github.com/dkoosis/lintfix/internal/pipeline"
	"github.com/dkoosis/lintfix/pkg/classify"
	"github.com/dkoosis/lintfix/pkg/diagnostic"
	"github.com/dkoosis/lintfix/pkg/pattern"
	"github.com/dkoosis/lintfix/pkg/patch"
)

func sampleRun() *pipeline.RunSummary {
	remaining := []*diagnostic.Diagnostic{
		{File: "/src/app.ts", Line: 9, Column: 3, Severity: diagnostic.SeverityWarning, Message: "Unexpected any", RuleID: "@typescript-eslint/no-explicit-any"},
	}
	stuck := &diagnostic.Diagnostic{File: "/src/app.ts", Line: 4, Column: 1, Message: "'x' is defined but never used", RuleID: "no-unused-vars"}
	return &pipeline.RunSummary{
		TotalBefore: 4,
		TotalAfter:  1,
		Fixed:       3,
		Remaining:   1,
		Patched:     2,
		Iterations:  1,
		History:     []int{4, 1},
		Attempts: []patch.FixAttempt{
			{Success: true, Strategy: patch.PruneImport},
			{Success: true, Strategy: patch.RenameErrorBinding},
			{Diagnostic: stuck, FilePath: "/src/app.ts", Reason: "no rewrite matched"},
		},
		Categories: map[classify.Category]int{
			classify.UnusedVars:            2,
			classify.UnusedErrors:          1,
			classify.UnsafeTypeAnnotations: 1,
		},
		After: classify.Analyze(remaining, classify.DefaultRules()),
		Phases: []pipeline.PhaseResult{
			{Phase: pipeline.PhaseDetect, Status: pipeline.StatusWarn, Detail: "4 issues in 1 files", Duration: 1500 * time.Millisecond},
			{Phase: pipeline.PhaseTypecheck, Status: pipeline.StatusOK, Duration: 200 * time.Millisecond},
			{Phase: pipeline.PhaseSecondary, Status: pipeline.StatusSkipped, Detail: "SONAR_TOKEN not set"},
		},
		RemainingDiagnostics: remaining,
		SecondarySkipped:     true,
	}
}

func TestFromRun(t *testing.T) {
	patterns := FromRun(sampleRun())

	sum, ok := patterns[0].(*pattern.Summary)
	if !ok {
		t.Fatalf("expected Summary first, got %T", patterns[0])
	}
	if sum.Kind != pattern.SummaryKindRun {
		t.Errorf("kind = %q", sum.Kind)
	}
	if want := "RUN: 4 found, 3 fixed, 1 remaining (issues remain)"; sum.Label != want {
		t.Errorf("label = %q, want %q", sum.Label, want)
	}

	var (
		cmp    *pattern.Comparison
		spark  *pattern.Sparkline
		tables = map[string]*pattern.TestTable{}
	)
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Comparison:
			cmp = v
		case *pattern.Sparkline:
			spark = v
		case *pattern.TestTable:
			tables[v.Label] = v
		}
	}
	if cmp == nil || len(cmp.Changes) != 3 {
		t.Fatalf("expected 3 category changes, got %+v", cmp)
	}
	if cmp.Changes[0].Label != "unused-vars" || cmp.Changes[0].Delta() != -2 {
		t.Errorf("unexpected first change %+v", cmp.Changes[0])
	}
	if spark == nil || len(spark.Counts) != 2 {
		t.Errorf("expected a two-point trend, got %+v", spark)
	}
	phases := tables["Phases"]
	if phases == nil || len(phases.Results) != 3 {
		t.Fatalf("expected phase table with 3 rows, got %+v", phases)
	}
	if phases.Results[0].Duration != "1.5s" || phases.Results[2].Status != "wip" {
		t.Errorf("unexpected phase rows %+v", phases.Results)
	}
	if np := tables["Not patched"]; np == nil || np.Results[0].Name != "/src/app.ts:4" {
		t.Errorf("unexpected unpatched table %+v", np)
	}
	if rem := tables["/src/app.ts"]; rem == nil || rem.Source != "remaining" {
		t.Errorf("expected remaining issues table, got %+v", rem)
	}
}

func TestFromRun_Clean(t *testing.T) {
	patterns := FromRun(&pipeline.RunSummary{})
	sum := patterns[0].(*pattern.Summary)
	if want := "RUN: 0 found, 0 fixed, 0 remaining (clean)"; sum.Label != want {
		t.Errorf("label = %q, want %q", sum.Label, want)
	}
	for _, p := range patterns {
		if _, ok := p.(*pattern.Comparison); ok {
			t.Error("no comparison expected for an empty run")
		}
	}
}
