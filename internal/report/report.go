// Package report reads and writes the delimited run report that lintfix keeps
// as its summary log: one section per tool invocation, each introduced by a
// delimiter line naming the tool, the content format and the outcome.
//
//	--- tool:lint format:text status:fail ---
//	/src/a.ts
//	  3:10  error  'foo' is defined but never used  no-unused-vars
//	--- tool:summary format:metrics ---
//	{"scope":"lintfix", ...}
package report

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
)

// DelimiterRe matches report section delimiter lines.
// Canonical regex: used by both the section parser and format detection.
var DelimiterRe = regexp.MustCompile(
	`^--- tool:(\w[\w-]*) format:(text|sarif|metrics|json)(?: status:(pass|fail|skip))? ---$`,
)

// Section formats.
const (
	FormatText    = "text"
	FormatSARIF   = "sarif"
	FormatMetrics = "metrics"
	FormatJSON    = "json"
)

// Section statuses.
const (
	StatusPass = "pass"
	StatusFail = "fail"
	StatusSkip = "skip"
)

// Section represents one tool's output within a report.
type Section struct {
	Tool    string // e.g. "format", "lint", "typecheck"
	Format  string // "text", "sarif", "metrics", "json"
	Status  string // "pass", "fail", "skip" or empty
	Content []byte // raw tool output
}

// Header returns the delimiter line for s.
func (s Section) Header() string {
	if s.Status == "" {
		return fmt.Sprintf("--- tool:%s format:%s ---", s.Tool, s.Format)
	}
	return fmt.Sprintf("--- tool:%s format:%s status:%s ---", s.Tool, s.Format, s.Status)
}

// Write emits sections in report form. Content lines that would themselves
// parse as a delimiter are indented by one space so the report stays
// unambiguous.
func Write(w io.Writer, sections []Section) error {
	var buf bytes.Buffer
	for _, s := range sections {
		if !DelimiterRe.MatchString(s.Header()) {
			return fmt.Errorf("invalid section tool=%q format=%q status=%q", s.Tool, s.Format, s.Status)
		}
		buf.WriteString(s.Header())
		buf.WriteByte('\n')
		content := trimTrailingNewline(s.Content)
		if len(content) == 0 {
			continue
		}
		for _, line := range bytes.Split(content, []byte("\n")) {
			if DelimiterRe.Match(line) {
				buf.WriteByte(' ')
			}
			buf.Write(line)
			buf.WriteByte('\n')
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Parse splits delimited report input into sections.
func Parse(data []byte) ([]Section, error) {
	data = trimTrailingNewline(data)
	lines := bytes.Split(data, []byte("\n"))
	var sections []Section
	var current *Section

	for _, line := range lines {
		if m := DelimiterRe.FindSubmatch(line); m != nil {
			if current != nil {
				current.Content = trimTrailingNewline(current.Content)
				sections = append(sections, *current)
			}
			current = &Section{
				Tool:   string(m[1]),
				Format: string(m[2]),
				Status: string(m[3]),
			}
			continue
		}
		if current != nil {
			current.Content = append(current.Content, line...)
			current.Content = append(current.Content, '\n')
		}
	}
	if current != nil {
		current.Content = trimTrailingNewline(current.Content)
		sections = append(sections, *current)
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no sections found in report input")
	}
	return sections, nil
}

// Find returns the first section for tool, if any.
func Find(sections []Section, tool string) (Section, bool) {
	for _, s := range sections {
		if s.Tool == tool {
			return s, true
		}
	}
	return Section{}, false
}

// trimTrailingNewline removes exactly one trailing newline byte, if present.
func trimTrailingNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		return b[:len(b)-1]
	}
	return b
}
