package diagnostic

import (
	"encoding/json"
	"fmt"

	"github.com/dkoosis/lintfix/internal/detect"
	"github.com/dkoosis/lintfix/internal/report"
	"github.com/dkoosis/lintfix/pkg/sarif"
)

// ESLintFileResult is one element of eslint's --format json output.
type ESLintFileResult struct {
	FilePath string          `json:"filePath"`
	Messages []ESLintMessage `json:"messages"`
}

// ESLintMessage is a single eslint JSON message.
type ESLintMessage struct {
	RuleID   *string `json:"ruleId"`
	Severity int     `json:"severity"` // 0=off, 1=warn, 2=error
	Message  string  `json:"message"`
	Line     int     `json:"line"`
	Column   int     `json:"column"`
	Fatal    bool    `json:"fatal,omitempty"`
}

// ParseJSON parses eslint --format json output.
func ParseJSON(data []byte) (*Result, error) {
	var files []ESLintFileResult
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("parse eslint json: %w", err)
	}

	res := newResult()
	for _, f := range files {
		res.noteFile(f.FilePath)
		for _, m := range f.Messages {
			sev := SeverityWarning
			switch {
			case m.Fatal || m.Severity == 2:
				sev = SeverityError
			case m.Severity == 0:
				continue
			}
			rule := ""
			if m.RuleID != nil {
				rule = *m.RuleID
			}
			res.add(&Diagnostic{
				File:     f.FilePath,
				Line:     max(m.Line, 1),
				Column:   max(m.Column, 1),
				Severity: sev,
				Message:  m.Message,
				RuleID:   rule,
				LogLine:  NoLogLine,
			})
		}
	}
	return res, nil
}

// FromSARIF converts SARIF results. Results without a location cannot be
// attributed to a file and are dropped, as text rows without a header are.
func FromSARIF(doc *sarif.Document) *Result {
	res := newResult()
	for _, run := range doc.Runs {
		for _, r := range run.Results {
			file := sarif.NormalizePath(r.File())
			if file == "" {
				continue
			}
			sev := SeverityWarning
			if r.Level == "error" {
				sev = SeverityError
			}
			res.add(&Diagnostic{
				File:     file,
				Line:     max(r.Line(), 1),
				Column:   max(r.Col(), 1),
				Severity: sev,
				Message:  r.Message.Text,
				RuleID:   r.RuleID,
				LogLine:  NoLogLine,
			})
		}
	}
	return res
}

// ParseOutput sniffs the output format and parses accordingly. Text that is
// not recognizable yields an empty result rather than an error; only
// structured input that fails to decode is an error.
func ParseOutput(data []byte, opts Options) (*Result, detect.Format, error) {
	format := detect.Sniff(data)
	switch format {
	case detect.ESLintJSON:
		res, err := ParseJSON(data)
		return res, format, err
	case detect.SARIF:
		doc, err := sarif.ReadBytes(data)
		if err != nil {
			return nil, format, err
		}
		return FromSARIF(doc), format, nil
	case detect.Report:
		sections, err := report.Parse(data)
		if err != nil {
			return nil, format, err
		}
		lint, ok := report.Find(sections, "lint")
		if !ok {
			return newResult(), format, nil
		}
		// Rows index the section, not data, so they cannot be traced back.
		res := ParseWith(string(lint.Content), opts)
		for _, d := range res.Diagnostics {
			d.LogLine = NoLogLine
		}
		return res, format, nil
	case detect.Unknown:
		return newResult(), format, nil
	default:
		return ParseWith(string(data), opts), format, nil
	}
}
