package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MultipleSections(t *testing.T) {
	input := "--- tool:format format:text status:pass ---\n" +
		"formatted 3 files\n" +
		"--- tool:lint format:text status:fail ---\n" +
		"/src/a.ts\n" +
		"  3:10  error  'foo' is defined but never used  no-unused-vars\n" +
		"--- tool:summary format:metrics ---\n" +
		"{}\n"

	sections, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Len(t, sections, 3)

	assert.Equal(t, "format", sections[0].Tool)
	assert.Equal(t, StatusPass, sections[0].Status)
	assert.Equal(t, "formatted 3 files", string(sections[0].Content))

	assert.Equal(t, "lint", sections[1].Tool)
	assert.Equal(t, StatusFail, sections[1].Status)
	assert.Contains(t, string(sections[1].Content), "no-unused-vars")

	assert.Equal(t, FormatMetrics, sections[2].Format)
	assert.Empty(t, sections[2].Status)
}

func TestParse_NoSections(t *testing.T) {
	_, err := Parse([]byte("just text\n"))
	assert.Error(t, err)
}

func TestWrite_ParseRoundTrip(t *testing.T) {
	in := []Section{
		{Tool: "lint", Format: FormatText, Status: StatusFail, Content: []byte("/a.ts\n  1:1  error  x  no-undef\n")},
		{Tool: "typecheck", Format: FormatText, Status: StatusSkip},
		{Tool: "summary", Format: FormatJSON, Content: []byte(`{"fixed":1}`)},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))

	out, err := Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "/a.ts\n  1:1  error  x  no-undef", string(out[0].Content))
	assert.Empty(t, out[1].Content)
	assert.Equal(t, StatusSkip, out[1].Status)
	assert.Equal(t, `{"fixed":1}`, string(out[2].Content))
}

func TestWrite_EscapesEmbeddedDelimiters(t *testing.T) {
	in := []Section{{
		Tool:    "lint",
		Format:  FormatText,
		Content: []byte("--- tool:evil format:text ---\nafter"),
	}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))

	out, err := Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, out, 1, "embedded delimiter must not start a new section")
	assert.Contains(t, string(out[0].Content), "after")
}

func TestWrite_RejectsInvalidTool(t *testing.T) {
	err := Write(&bytes.Buffer{}, []Section{{Tool: "bad tool", Format: FormatText}})
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	sections := []Section{{Tool: "lint"}, {Tool: "summary"}}
	s, ok := Find(sections, "summary")
	assert.True(t, ok)
	assert.Equal(t, "summary", s.Tool)

	_, ok = Find(sections, "typecheck")
	assert.False(t, ok)
}
