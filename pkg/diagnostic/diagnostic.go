// Package diagnostic turns the captured output of a lint command into
// structured Diagnostic records.
//
// Three output shapes are understood: eslint's "stylish" text (a file header
// line followed by indented line:col rows), eslint's JSON array, and SARIF.
// Text parsing is lossy: anything that does not match a header
// or a row is ignored, and rows seen before any header are dropped because
// they cannot be attributed to a file.
package diagnostic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dkoosis/lintfix/pkg/sarif"
)

// Severity is the level a lint tool reported a diagnostic at.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// ParseSeverity maps a tool's severity token to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	default:
		return SeverityWarning, fmt.Errorf("unknown severity %q", s)
	}
}

// NoLogLine marks a diagnostic that has no line of its own in the captured
// text output.
const NoLogLine = -1

// Diagnostic is one issue reported by the lint tool.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Message  string
	RuleID   string // empty when the tool gave none

	// LogLine is the 0-based index of the output line this diagnostic was
	// parsed from, or NoLogLine.
	LogLine int

	// Resolved is set when a patch for this diagnostic succeeds, and
	// settled after the final detection: only diagnostics that no longer
	// reproduce stay resolved.
	Resolved bool
}

// Unclassified reports whether the tool gave no rule id.
func (d *Diagnostic) Unclassified() bool {
	return d.RuleID == ""
}

// Key identifies a diagnostic across two runs of the tool. Column is left
// out: renaming an earlier identifier on the same line shifts it.
func (d *Diagnostic) Key() string {
	return fmt.Sprintf("%s\x00%d\x00%s\x00%s", d.File, d.Line, d.RuleID, d.Message)
}

// Fingerprint identifies a diagnostic by file, rule and message alone, so
// it survives edits that move lines.
func (d *Diagnostic) Fingerprint() string {
	return fmt.Sprintf("%s\x00%s\x00%s", d.File, d.RuleID, d.Message)
}

func (d *Diagnostic) dedupeKey() string {
	return fmt.Sprintf("%s\x00%d", d.Key(), d.Column)
}

func (d *Diagnostic) String() string {
	rule := d.RuleID
	if rule == "" {
		rule = "unclassified"
	}
	return fmt.Sprintf("%s:%d:%d %s %s (%s)", d.File, d.Line, d.Column, d.Severity, d.Message, rule)
}

// Result is the parsed form of one tool invocation's output.
type Result struct {
	Diagnostics []*Diagnostic
	ByFile      map[string][]*Diagnostic
	// Files lists files in the order their first diagnostic or header
	// appeared.
	Files []string
	// Headers maps a file to the output line indices of its header lines.
	Headers map[string][]int
}

func newResult() *Result {
	return &Result{
		ByFile:  make(map[string][]*Diagnostic),
		Headers: make(map[string][]int),
	}
}

func (r *Result) noteFile(file string) {
	if _, seen := r.ByFile[file]; !seen {
		r.ByFile[file] = nil
		r.Files = append(r.Files, file)
	}
}

func (r *Result) add(d *Diagnostic) {
	r.noteFile(d.File)
	r.Diagnostics = append(r.Diagnostics, d)
	r.ByFile[d.File] = append(r.ByFile[d.File], d)
}

// Total returns the number of parsed diagnostics.
func (r *Result) Total() int {
	return len(r.Diagnostics)
}

// Dedupe returns diags with exact duplicates removed, keeping the first
// occurrence and the input order.
func Dedupe(diags []*Diagnostic) []*Diagnostic {
	seen := make(map[string]bool, len(diags))
	out := make([]*Diagnostic, 0, len(diags))
	for _, d := range diags {
		k := d.dedupeKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

var bindingNameRe = regexp.MustCompile("['\"`]([A-Za-z_$][\\w$]*)['\"`]")

// BindingName extracts the identifier quoted in an unused-binding message
// such as "'foo' is defined but never used.", or "".
func BindingName(message string) string {
	m := bindingNameRe.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}

// ToSARIF builds a SARIF document holding diags.
func ToSARIF(toolName string, diags []*Diagnostic) *sarif.Builder {
	b := sarif.NewBuilder(toolName, "")
	for _, d := range diags {
		b.AddResult(d.RuleID, d.Severity.String(), d.Message, d.File, d.Line, d.Column)
	}
	return b
}
