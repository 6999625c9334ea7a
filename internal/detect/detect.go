// Package detect sniffs captured lint output to determine its format.
package detect

import (
	"bytes"
	"encoding/json"

	"github.com/dkoosis/lintfix/internal/report"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown    Format = iota
	Stylish           // eslint-style text: file header lines followed by line:col rows
	ESLintJSON        // eslint --format json array
	SARIF             // SARIF 2.1.0 JSON document
	Report            // lintfix delimited run report
)

func (f Format) String() string {
	switch f {
	case Stylish:
		return "stylish"
	case ESLintJSON:
		return "eslint-json"
	case SARIF:
		return "sarif"
	case Report:
		return "report"
	default:
		return "unknown"
	}
}

// Sniff examines input to determine format.
// Anything that is not recognizable JSON or a report is treated as Stylish
// text; an empty or whitespace-only input is Unknown.
func Sniff(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return Unknown
	}

	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if report.DelimiterRe.Match(bytes.TrimRight(firstLine, "\r")) {
		return Report
	}

	switch data[0] {
	case '{':
		if isSARIF(data) {
			return SARIF
		}
		return Unknown
	case '[':
		if isESLintJSON(data) {
			return ESLintJSON
		}
		return Unknown
	}
	return Stylish
}

func isSARIF(data []byte) bool {
	var probe struct {
		Version string            `json:"version"`
		Runs    []json.RawMessage `json:"runs"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Version != "" && probe.Runs != nil
}

func isESLintJSON(data []byte) bool {
	var probe []struct {
		FilePath *string          `json:"filePath"`
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	// An empty array is a clean eslint run.
	for _, p := range probe {
		if p.FilePath == nil {
			return false
		}
	}
	return true
}
