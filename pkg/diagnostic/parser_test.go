package diagnostic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stylishOutput = `
> app@0.1.0 lint
> eslint .

/home/dev/app/src/a.ts
   3:10  error    'foo' is defined but never used            @typescript-eslint/no-unused-vars
  12:5   warning  Unexpected any. Specify a different type    @typescript-eslint/no-explicit-any

./src/hooks/useThing.tsx
  20:6  warning  React Hook useEffect has a missing dependency: 'id'. Either include it or remove the dependency array  react-hooks/exhaustive-deps

✖ 3 problems (1 error, 2 warnings)
`

func TestParse_Stylish(t *testing.T) {
	res := Parse(stylishOutput)

	want := []*Diagnostic{
		{File: "/home/dev/app/src/a.ts", Line: 3, Column: 10, Severity: SeverityError,
			Message: "'foo' is defined but never used", RuleID: "@typescript-eslint/no-unused-vars", LogLine: 5},
		{File: "/home/dev/app/src/a.ts", Line: 12, Column: 5, Severity: SeverityWarning,
			Message: "Unexpected any. Specify a different type", RuleID: "@typescript-eslint/no-explicit-any", LogLine: 6},
		{File: "./src/hooks/useThing.tsx", Line: 20, Column: 6, Severity: SeverityWarning,
			Message: "React Hook useEffect has a missing dependency: 'id'. Either include it or remove the dependency array",
			RuleID:  "react-hooks/exhaustive-deps", LogLine: 9},
	}
	if diff := cmp.Diff(want, res.Diagnostics); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"/home/dev/app/src/a.ts", "./src/hooks/useThing.tsx"}, res.Files)
	assert.Len(t, res.ByFile["/home/dev/app/src/a.ts"], 2)
	assert.Equal(t, []int{4}, res.Headers["/home/dev/app/src/a.ts"])
	assert.Equal(t, []int{8}, res.Headers["./src/hooks/useThing.tsx"])
}

func TestParse_RoundTrip(t *testing.T) {
	type block struct {
		file string
		line int
		col  int
		sev  string
		msg  string
		rule string
	}
	var blocks []block
	for i := 0; i < 25; i++ {
		sev := "warning"
		if i%3 == 0 {
			sev = "error"
		}
		blocks = append(blocks, block{
			file: fmt.Sprintf("./src/mod%d.ts", i%4),
			line: i + 1,
			col:  (i % 7) + 1,
			sev:  sev,
			msg:  fmt.Sprintf("'v%d' is assigned a value but never used", i),
			rule: "no-unused-vars",
		})
	}

	var b strings.Builder
	for _, blk := range blocks {
		fmt.Fprintf(&b, "%s\n  %d:%d  %s  %s  %s\n", blk.file, blk.line, blk.col, blk.sev, blk.msg, blk.rule)
	}

	res := Parse(b.String())
	require.Len(t, res.Diagnostics, len(blocks))
	for i, blk := range blocks {
		d := res.Diagnostics[i]
		assert.Equal(t, blk.file, d.File)
		assert.Equal(t, blk.line, d.Line)
		assert.Equal(t, blk.col, d.Column)
		assert.Equal(t, blk.sev, d.Severity.String())
		assert.Equal(t, blk.msg, d.Message)
		assert.Equal(t, blk.rule, d.RuleID)
		assert.Equal(t, 2*i+1, d.LogLine)
	}
}

func TestParse_RowBeforeHeaderDropped(t *testing.T) {
	out := "  1:1  error  stray  no-undef\n/src/a.js\n  2:2  error  kept  no-undef\n"
	res := Parse(out)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "kept", res.Diagnostics[0].Message)
}

func TestParse_StripsANSI(t *testing.T) {
	out := "\x1b[4m/src/a.ts\x1b[24m\n  \x1b[2m3:10\x1b[22m  \x1b[31merror\x1b[39m  'x' is defined but never used  \x1b[2mno-unused-vars\x1b[22m\n"
	res := Parse(out)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, "/src/a.ts", d.File)
	assert.Equal(t, "no-unused-vars", d.RuleID)
	assert.Equal(t, "'x' is defined but never used", d.Message)
}

func TestParse_CustomExtensions(t *testing.T) {
	out := "./lib/thing.coffee\n  1:1  error  bad  some-rule\n"
	assert.Empty(t, Parse(out).Diagnostics)

	res := ParseWith(out, Options{Extensions: []string{".coffee"}})
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "./lib/thing.coffee", res.Diagnostics[0].File)
}

func TestParse_EmptyAndNoise(t *testing.T) {
	assert.Empty(t, Parse("").Diagnostics)
	assert.Empty(t, Parse("all good\n\n✨ Done in 1.2s\n").Diagnostics)
}

func TestParseRow_RuleID(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		message string
		rule    string
	}{
		{"aligned scoped rule", "1:1  error  'a' is defined but never used  @typescript-eslint/no-unused-vars",
			"'a' is defined but never used", "@typescript-eslint/no-unused-vars"},
		{"single spaces kebab rule", "1:1 error 'a' is defined but never used no-unused-vars",
			"'a' is defined but never used", "no-unused-vars"},
		{"single spaces plugin rule", "1:1 warning missing dep react-hooks/exhaustive-deps",
			"missing dep", "react-hooks/exhaustive-deps"},
		{"no rule", "1:1 error Parsing error: Unexpected token",
			"Parsing error: Unexpected token", ""},
		{"aligned core rule without dash", "4:2  error  Unexpected debugger statement  eqeqeq",
			"Unexpected debugger statement", "eqeqeq"},
		{"trailing punctuation is message", "1:1  error  Unexpected token )",
			"Unexpected token )", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseRow(tt.row)
			require.True(t, ok)
			assert.Equal(t, tt.message, d.Message)
			assert.Equal(t, tt.rule, d.RuleID)
			assert.Equal(t, NoLogLine, d.LogLine)
		})
	}
}

func TestParseRow_Rejects(t *testing.T) {
	for _, row := range []string{
		"",
		"/src/a.ts",
		"0:1 error zero line no-undef",
		"1:1 info not a severity no-undef",
		"✖ 3 problems (1 error, 2 warnings)",
	} {
		_, ok := ParseRow(row)
		assert.False(t, ok, "row %q", row)
	}
}

func TestParseHeader(t *testing.T) {
	exts := DefaultExtensions
	for _, h := range []string{"/abs/a.ts", "./rel/b.jsx", `C:\proj\c.tsx`, "  /indented/d.vue  "} {
		_, ok := ParseHeader(h, exts)
		assert.True(t, ok, "header %q", h)
	}
	for _, h := range []string{"src/a.ts", "/abs/readme.md", "", "> eslint ."} {
		_, ok := ParseHeader(h, exts)
		assert.False(t, ok, "header %q", h)
	}
}

func TestDedupe(t *testing.T) {
	a := &Diagnostic{File: "a.ts", Line: 1, Column: 1, Message: "m", RuleID: "r"}
	dup := &Diagnostic{File: "a.ts", Line: 1, Column: 1, Message: "m", RuleID: "r"}
	otherCol := &Diagnostic{File: "a.ts", Line: 1, Column: 9, Message: "m", RuleID: "r"}

	got := Dedupe([]*Diagnostic{a, dup, otherCol})
	if diff := cmp.Diff([]*Diagnostic{a, otherCol}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("dedupe mismatch (-want +got):\n%s", diff)
	}
	assert.Same(t, a, got[0])
}

func TestKeyIgnoresColumn(t *testing.T) {
	a := Diagnostic{File: "a.ts", Line: 3, Column: 10, Message: "m", RuleID: "r"}
	b := a
	b.Column = 12
	assert.Equal(t, a.Key(), b.Key())

	b.Line = 4
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.RuleID = "other"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestBindingName(t *testing.T) {
	assert.Equal(t, "foo", BindingName("'foo' is defined but never used."))
	assert.Equal(t, "$el", BindingName("'$el' is assigned a value but never used."))
	assert.Equal(t, "error", BindingName("\"error\" is defined but never used"))
	assert.Equal(t, "", BindingName("Unexpected any."))
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{File: "a.ts", Line: 1, Column: 2, Severity: SeverityError, Message: "boom"}
	assert.Equal(t, "a.ts:1:2 error boom (unclassified)", d.String())
	assert.True(t, d.Unclassified())
}
