// Package classify buckets diagnostics into the categories lintfix knows how
// to act on and computes the aggregate counts printed in the run report.
package classify

import (
	"regexp"
	"slices"
	"strings"

	"github.com/dkoosis/lintfix/pkg/diagnostic"
)

// Category is a fix-relevant bucket of diagnostics.
type Category int

const (
	UnusedVars Category = iota
	UnusedErrors
	UnsafeTypeAnnotations
	HookDependencies
	Other
)

// Categories lists every category in report order.
var Categories = []Category{UnusedVars, UnusedErrors, UnsafeTypeAnnotations, HookDependencies, Other}

func (c Category) String() string {
	switch c {
	case UnusedVars:
		return "unused-vars"
	case UnusedErrors:
		return "unused-errors"
	case UnsafeTypeAnnotations:
		return "unsafe-type-annotations"
	case HookDependencies:
		return "hook-dependencies"
	default:
		return "other"
	}
}

// Fixable reports whether the patcher has a strategy for c.
func (c Category) Fixable() bool {
	return c == UnusedVars || c == UnusedErrors
}

// Rules names the rule-id suffixes that identify each category. A rule
// matches when it equals the suffix or ends in "/"+suffix, so both
// "no-unused-vars" and "@typescript-eslint/no-unused-vars" count.
type Rules struct {
	Unused      string   `yaml:"unused" toml:"unused"`
	ExplicitAny string   `yaml:"explicit_any" toml:"explicit_any"`
	HookDeps    string   `yaml:"hook_deps" toml:"hook_deps"`
	ErrorNames  []string `yaml:"error_names" toml:"error_names"`
}

// DefaultRules matches eslint and typescript-eslint rule names.
func DefaultRules() Rules {
	return Rules{
		Unused:      "no-unused-vars",
		ExplicitAny: "no-explicit-any",
		HookDeps:    "exhaustive-deps",
		ErrorNames:  []string{"error"},
	}
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.Unused == "" {
		r.Unused = d.Unused
	}
	if r.ExplicitAny == "" {
		r.ExplicitAny = d.ExplicitAny
	}
	if r.HookDeps == "" {
		r.HookDeps = d.HookDeps
	}
	if len(r.ErrorNames) == 0 {
		r.ErrorNames = d.ErrorNames
	}
	return r
}

// IsErrorName reports whether name is one of the configured error-binding
// names.
func (r Rules) IsErrorName(name string) bool {
	return slices.Contains(r.withDefaults().ErrorNames, name)
}

func ruleMatches(ruleID, suffix string) bool {
	return ruleID == suffix || strings.HasSuffix(ruleID, "/"+suffix)
}

var (
	unusedMessageRe = regexp.MustCompile(`(?i)\b(?:is defined|is assigned a value|is declared)\b.*\bnever (?:used|read)\b`)
	caughtErrorRe   = regexp.MustCompile(`(?i)\bcaught (?:error|errors|exception)\b`)
)

// Classify returns the category of d. Checks run in order and the first match
// wins.
func Classify(d *diagnostic.Diagnostic, rules Rules) Category {
	rules = rules.withDefaults()
	switch {
	case ruleMatches(d.RuleID, rules.Unused):
		name := diagnostic.BindingName(d.Message)
		if rules.IsErrorName(name) || caughtErrorRe.MatchString(d.Message) {
			return UnusedErrors
		}
		if name != "" && unusedMessageRe.MatchString(d.Message) {
			return UnusedVars
		}
		return Other
	case ruleMatches(d.RuleID, rules.ExplicitAny):
		return UnsafeTypeAnnotations
	case ruleMatches(d.RuleID, rules.HookDeps):
		return HookDependencies
	default:
		return Other
	}
}

// Analysis holds the aggregate view of one set of diagnostics.
type Analysis struct {
	Total        int
	ErrorCount   int
	WarningCount int
	ByRule       map[string]int
	ByFile       map[string]int
	Categories   map[Category][]*diagnostic.Diagnostic
}

// Analyze classifies every diagnostic. Each input lands in exactly one
// category, so the buckets together hold the input as a multiset.
func Analyze(diags []*diagnostic.Diagnostic, rules Rules) *Analysis {
	a := &Analysis{
		ByRule:     make(map[string]int),
		ByFile:     make(map[string]int),
		Categories: make(map[Category][]*diagnostic.Diagnostic, len(Categories)),
	}
	for _, d := range diags {
		a.Total++
		if d.Severity == diagnostic.SeverityError {
			a.ErrorCount++
		} else {
			a.WarningCount++
		}
		rule := d.RuleID
		if rule == "" {
			rule = "unclassified"
		}
		a.ByRule[rule]++
		a.ByFile[d.File]++

		c := Classify(d, rules)
		a.Categories[c] = append(a.Categories[c], d)
	}
	return a
}

// Counts returns the size of every category, including empty ones.
func (a *Analysis) Counts() map[Category]int {
	out := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		out[c] = len(a.Categories[c])
	}
	return out
}

// Fixable returns the diagnostics the patcher should attempt: unused
// variables first, then unused error bindings, each in emitted order.
func (a *Analysis) Fixable() []*diagnostic.Diagnostic {
	out := make([]*diagnostic.Diagnostic, 0, len(a.Categories[UnusedVars])+len(a.Categories[UnusedErrors]))
	out = append(out, a.Categories[UnusedVars]...)
	return append(out, a.Categories[UnusedErrors]...)
}

// RuleCount is one row of the rule leaderboard.
type RuleCount struct {
	Rule  string
	Count int
}

// TopRules returns the n most frequent rules, ties broken by name.
func (a *Analysis) TopRules(n int) []RuleCount {
	out := make([]RuleCount, 0, len(a.ByRule))
	for r, c := range a.ByRule {
		out = append(out, RuleCount{Rule: r, Count: c})
	}
	slices.SortFunc(out, func(x, y RuleCount) int {
		if x.Count != y.Count {
			return y.Count - x.Count
		}
		return strings.Compare(x.Rule, y.Rule)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
