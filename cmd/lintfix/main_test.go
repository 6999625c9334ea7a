package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/lintfix/internal/report"
)

// TestHelperProcess stands in for the lint tool when a test runs the
// pipeline end to end.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("LINTFIX_TEST_HELPER") == "" {
		return
	}

	args := os.Args[1:]
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) > 0 {
		args = args[1:]
	}

	mode := ""
	if len(args) > 0 {
		mode = args[0]
	}
	switch mode {
	case "clean":
		os.Exit(0)
	case "undef":
		file := os.Getenv("FAKE_LINT_FILE")
		fmt.Printf("\n%s\n  2:10  error  'missing' is not defined  no-undef\n\n✖ 1 problem (1 error, 0 warnings)\n", file)
		os.Exit(1)
	}
	os.Exit(2)
}

func helperArgv(mode string) string {
	return fmt.Sprintf("[%q, %q, %q, %q]", os.Args[0], "-test.run=TestHelperProcess", "--", mode)
}

func writeProject(t *testing.T, lintMode string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf("commands:\n  format: []\n  autofix: []\n  lint: %s\n", helperArgv(lintMode))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lintfix.yaml"), []byte(cfg), 0o644))
	t.Setenv("LINTFIX_TEST_HELPER", "1")
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const stylish = `
/src/app.ts
  3:10  error    'foo' is defined but never used  @typescript-eslint/no-unused-vars
  9:5   warning  Unexpected any. Specify a different type  @typescript-eslint/no-explicit-any

✖ 2 problems (1 error, 1 warning)
`

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "lintfix dev"), out)
}

func TestParse_Stdin(t *testing.T) {
	code, out, errOut := runCLI(t, stylish, "parse", "--format", "llm")
	assert.Equal(t, 1, code, errOut)
	assert.Contains(t, out, "SCOPE: ANALYSIS: 2 issues in 1 files")
	assert.Contains(t, out, "ERR @typescript-eslint/no-unused-vars:3:10 'foo' is defined but never used")
	assert.Contains(t, out, "WARN @typescript-eslint/no-explicit-any:9:5")
}

func TestParse_WarningsOnlyExitZero(t *testing.T) {
	in := "\n/src/app.ts\n  1:1  warning  Unexpected console statement  no-console\n"
	code, _, errOut := runCLI(t, in, "parse", "--format", "json")
	assert.Equal(t, 0, code, errOut)
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lint.log")
	require.NoError(t, os.WriteFile(path, []byte(stylish), 0o644))
	code, out, _ := runCLI(t, "", "parse", path, "--format", "llm")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "## /src/app.ts")
}

func TestParse_NoInput(t *testing.T) {
	code, out, errOut := runCLI(t, "", "parse")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Equal(t, "lintfix: no input\n", errOut)
}

func TestPatchUnused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("import { foo, bar } from 'm';\nbar();\n"), 0o644))

	code, out, errOut := runCLI(t, "", "patch", "unused", path, "1", "foo")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, fmt.Sprintf("patched %s:1\n", path), out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "import { bar } from 'm';\nbar();\n", string(data))
}

func TestPatchError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.ts")
	src := "try {\n  run();\n} catch (error) {\n  retry();\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	code, _, errOut := runCLI(t, "", "patch", "error", path, "3")
	require.Equal(t, 0, code, errOut)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "} catch (_error) {")
}

func TestPatchError_NoBinding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.ts")
	require.NoError(t, os.WriteFile(path, []byte("const x = 1;\n"), 0o644))

	code, _, errOut := runCLI(t, "", "patch", "error", path, "1", "--near")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no error binding to rename")
}

func TestPatch_InvalidLine(t *testing.T) {
	code, _, errOut := runCLI(t, "", "patch", "unused", "a.ts", "zero", "foo")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `invalid line "zero"`)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, []report.Section{
		{Tool: "lint", Format: report.FormatText, Status: report.StatusFail, Content: []byte(stylish)},
		{Tool: "typecheck", Format: report.FormatText, Status: report.StatusPass},
	}))
	path := filepath.Join(t.TempDir(), "summary.log")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	code, out, errOut := runCLI(t, "", "report", path, "--format", "llm")
	assert.Equal(t, 1, code, errOut)
	assert.True(t, strings.HasPrefix(out, "REPORT: 2 sections"), out)
	assert.Contains(t, out, "lint:")
}

func TestRun_CleanProject(t *testing.T) {
	dir := writeProject(t, "clean")
	logs := t.TempDir()

	code, out, errOut := runCLI(t, "", "run", dir, "--format", "llm", "--no-tui", "--log-dir", logs)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "SCOPE: RUN: 0 found, 0 fixed, 0 remaining (clean)")
	assert.Contains(t, errOut, "detect")

	entries, err := os.ReadDir(logs)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRun_DefaultCommandWithRemainingIssues(t *testing.T) {
	dir := writeProject(t, "undef")
	src := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(src, []byte("\nconsole.log(missing);\n"), 0o644))
	t.Setenv("FAKE_LINT_FILE", src)

	code, out, errOut := runCLI(t, "", dir, "--format", "llm", "--ci", "--log-dir", t.TempDir())
	assert.Equal(t, 1, code, errOut)
	assert.Contains(t, out, "1 remaining (issues remain)")
	assert.Contains(t, out, "ERR no-undef:2:10 'missing' is not defined")
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := writeProject(t, "clean")
	code, _, errOut := runCLI(t, "", "run", dir, "--max-iterations", "0")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "lintfix: config validation failed: max_iterations must be at least 1")
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "llm", resolveFormat("auto", &buf))
	assert.Equal(t, "llm", resolveFormat("", &buf))
	assert.Equal(t, "json", resolveFormat("json", &buf))
	assert.Equal(t, 80, termWidth(&buf))
}

func TestExitCodeError(t *testing.T) {
	assert.Equal(t, "exit status 3", exitCode(3).Error())
}

func TestRun_RecordsHistory(t *testing.T) {
	dir := writeProject(t, "clean")

	for range 2 {
		code, _, errOut := runCLI(t, "", "run", dir, "--format", "llm", "--no-tui", "--log-dir", t.TempDir())
		require.Equal(t, 0, code, errOut)
	}
	assert.FileExists(t, filepath.Join(dir, ".lintfix", "history.db"))

	code, out, errOut := runCLI(t, "", "history", dir, "--format", "llm")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "SCOPE: HISTORY: 2 runs, remaining 0 → 0")
	assert.Contains(t, out, "Remaining per run: 0 -> 0")
}

func TestRun_NoHistory(t *testing.T) {
	dir := writeProject(t, "clean")
	code, out, errOut := runCLI(t, "", "run", dir, "--format", "llm", "--no-tui", "--no-history", "--log-dir", t.TempDir())
	require.Equal(t, 0, code, errOut)
	assert.NotContains(t, out, "Remaining per run")
	assert.NoFileExists(t, filepath.Join(dir, ".lintfix", "history.db"))
}
