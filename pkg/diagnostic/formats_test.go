package diagnostic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/lintfix/internal/detect"
	"github.com/dkoosis/lintfix/internal/report"
	"github.com/dkoosis/lintfix/pkg/sarif"
)

const eslintJSON = `[
  {"filePath": "/app/src/a.ts", "messages": [
    {"ruleId": "@typescript-eslint/no-unused-vars", "severity": 2, "message": "'foo' is defined but never used.", "line": 3, "column": 10},
    {"ruleId": "eqeqeq", "severity": 0, "message": "off", "line": 4, "column": 1},
    {"ruleId": null, "severity": 2, "fatal": true, "message": "Parsing error: Unexpected token", "line": 9, "column": 2}
  ]},
  {"filePath": "/app/src/clean.ts", "messages": []}
]`

func TestParseJSON(t *testing.T) {
	res, err := ParseJSON([]byte(eslintJSON))
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 2)

	first := res.Diagnostics[0]
	assert.Equal(t, "/app/src/a.ts", first.File)
	assert.Equal(t, SeverityError, first.Severity)
	assert.Equal(t, "@typescript-eslint/no-unused-vars", first.RuleID)
	assert.Equal(t, NoLogLine, first.LogLine)

	assert.True(t, res.Diagnostics[1].Unclassified())
	assert.Equal(t, []string{"/app/src/a.ts", "/app/src/clean.ts"}, res.Files)
}

func TestParseJSON_Invalid(t *testing.T) {
	_, err := ParseJSON([]byte(`{"nope": true}`))
	assert.Error(t, err)
}

func TestSARIFRoundTrip(t *testing.T) {
	diags := []*Diagnostic{
		{File: "src/a.ts", Line: 3, Column: 10, Severity: SeverityError, Message: "'foo' is defined but never used", RuleID: "no-unused-vars"},
		{File: "src/b.ts", Line: 7, Column: 1, Severity: SeverityWarning, Message: "Unexpected any", RuleID: "@typescript-eslint/no-explicit-any"},
	}

	var buf bytes.Buffer
	_, err := ToSARIF("eslint", diags).WriteTo(&buf)
	require.NoError(t, err)

	doc, err := sarif.ReadBytes(buf.Bytes())
	require.NoError(t, err)
	res := FromSARIF(doc)
	require.Len(t, res.Diagnostics, 2)
	for i, d := range res.Diagnostics {
		assert.Equal(t, diags[i].Key(), d.Key())
		assert.Equal(t, diags[i].Severity, d.Severity)
		assert.Equal(t, NoLogLine, d.LogLine)
	}
}

func TestParseOutput_Dispatch(t *testing.T) {
	res, format, err := ParseOutput([]byte(eslintJSON), Options{})
	require.NoError(t, err)
	assert.Equal(t, detect.ESLintJSON, format)
	assert.Len(t, res.Diagnostics, 2)

	res, format, err = ParseOutput([]byte(stylishOutput), Options{})
	require.NoError(t, err)
	assert.Equal(t, detect.Stylish, format)
	assert.Len(t, res.Diagnostics, 3)

	res, format, err = ParseOutput(nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, detect.Unknown, format)
	assert.Empty(t, res.Diagnostics)
}

func TestParseOutput_Report(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, []report.Section{
		{Tool: "summary", Format: report.FormatText, Content: []byte("total 1")},
		{Tool: "lint", Format: report.FormatText, Status: report.StatusFail,
			Content: []byte("/src/a.ts\n  1:7  error  'x' is defined but never used  no-unused-vars")},
	}))

	res, format, err := ParseOutput(buf.Bytes(), Options{})
	require.NoError(t, err)
	assert.Equal(t, detect.Report, format)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "/src/a.ts", res.Diagnostics[0].File)
	assert.Equal(t, NoLogLine, res.Diagnostics[0].LogLine)
}
