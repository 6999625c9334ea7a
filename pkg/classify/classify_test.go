package classify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/lintfix/pkg/diagnostic"
)

func diag(rule, msg string) *diagnostic.Diagnostic {
	return &diagnostic.Diagnostic{File: "a.ts", Line: 1, Column: 1, RuleID: rule, Message: msg}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		d    *diagnostic.Diagnostic
		want Category
	}{
		{"unused import", diag("@typescript-eslint/no-unused-vars", "'foo' is defined but never used."), UnusedVars},
		{"unused assignment", diag("no-unused-vars", "'x' is assigned a value but never used."), UnusedVars},
		{"unused caught error", diag("@typescript-eslint/no-unused-vars", "'error' is defined but never used."), UnusedErrors},
		{"caught error message", diag("no-unused-vars", "'e' is defined but never used. Allowed unused caught errors must match /^_/u."), UnusedErrors},
		{"unused rule, odd message", diag("no-unused-vars", "Something else entirely"), Other},
		{"explicit any", diag("@typescript-eslint/no-explicit-any", "Unexpected any. Specify a different type."), UnsafeTypeAnnotations},
		{"hook deps", diag("react-hooks/exhaustive-deps", "React Hook useEffect has a missing dependency: 'id'."), HookDependencies},
		{"unclassified", diag("", "Parsing error"), Other},
		{"suffix must be whole segment", diag("custom/not-no-unused-vars", "'a' is defined but never used"), Other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.d, DefaultRules()))
		})
	}
}

func TestClassify_CustomErrorNames(t *testing.T) {
	d := diag("no-unused-vars", "'err' is defined but never used.")
	assert.Equal(t, UnusedVars, Classify(d, Rules{}))
	assert.Equal(t, UnusedErrors, Classify(d, Rules{ErrorNames: []string{"error", "err"}}))
}

func TestAnalyze_Partition(t *testing.T) {
	var diags []*diagnostic.Diagnostic
	msgs := []struct{ rule, msg string }{
		{"no-unused-vars", "'a' is defined but never used."},
		{"no-unused-vars", "'error' is defined but never used."},
		{"@typescript-eslint/no-explicit-any", "Unexpected any."},
		{"react-hooks/exhaustive-deps", "missing dependency"},
		{"eqeqeq", "Expected '==='"},
		{"", "Parsing error"},
	}
	for i := 0; i < 30; i++ {
		m := msgs[i%len(msgs)]
		d := diag(m.rule, m.msg)
		d.File = fmt.Sprintf("f%d.ts", i%3)
		if i%2 == 0 {
			d.Severity = diagnostic.SeverityError
		}
		diags = append(diags, d)
	}
	// Duplicate pointer on purpose; multiset semantics keep both.
	diags = append(diags, diags[0])

	a := Analyze(diags, DefaultRules())
	assert.Equal(t, len(diags), a.Total)
	assert.Equal(t, a.Total, a.ErrorCount+a.WarningCount)

	seen := make(map[*diagnostic.Diagnostic]int)
	total := 0
	for _, c := range Categories {
		for _, d := range a.Categories[c] {
			seen[d]++
			total++
			assert.Equal(t, c, Classify(d, DefaultRules()))
		}
	}
	assert.Equal(t, len(diags), total)

	want := make(map[*diagnostic.Diagnostic]int)
	for _, d := range diags {
		want[d]++
	}
	assert.Equal(t, want, seen)

	counts := a.Counts()
	assert.Equal(t, 6, counts[UnusedVars])
	assert.Equal(t, 5, counts[UnusedErrors])
	assert.Equal(t, 5, counts[UnsafeTypeAnnotations])
	assert.Equal(t, 5, counts[HookDependencies])
	assert.Equal(t, 10, counts[Other])
	assert.Equal(t, 5, a.ByRule["unclassified"])
}

func TestAnalysis_Fixable(t *testing.T) {
	errD := diag("no-unused-vars", "'error' is defined but never used.")
	v1 := diag("no-unused-vars", "'a' is defined but never used.")
	v2 := diag("no-unused-vars", "'b' is defined but never used.")
	other := diag("eqeqeq", "x")

	a := Analyze([]*diagnostic.Diagnostic{errD, v1, other, v2}, DefaultRules())
	got := a.Fixable()
	require.Len(t, got, 3)
	assert.Same(t, v1, got[0])
	assert.Same(t, v2, got[1])
	assert.Same(t, errD, got[2])
}

func TestAnalysis_TopRules(t *testing.T) {
	a := Analyze([]*diagnostic.Diagnostic{
		diag("b-rule", "x"), diag("a-rule", "x"), diag("b-rule", "x"), diag("c-rule", "x"), diag("a-rule", "x"),
	}, DefaultRules())
	assert.Equal(t, []RuleCount{{"a-rule", 2}, {"b-rule", 2}}, a.TopRules(2))
	assert.Len(t, a.TopRules(0), 3)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "unused-vars", UnusedVars.String())
	assert.Equal(t, "other", Other.String())
	assert.True(t, UnusedErrors.Fixable())
	assert.False(t, HookDependencies.Fixable())
}
