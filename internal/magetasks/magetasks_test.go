package magetasks

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/lintfix/internal/progress"
)

func captureConsole(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := Console
	Console = progress.NewConsole(&buf, true)
	t.Cleanup(func() { Console = old })
	return &buf
}

func TestInitialize(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, Initialize())
	assert.DirExists(t, filepath.Join(dir, "bin"))

	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(ProjectRoot)
	assert.Equal(t, want, got)
}

func TestLdflags(t *testing.T) {
	built := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got := Ldflags("v1.2.0", "abc123", built)
	assert.Contains(t, got, "-X 'github.com/dkoosis/lintfix/internal/version.Version=v1.2.0'")
	assert.Contains(t, got, "version.CommitHash=abc123'")
	assert.Contains(t, got, "version.BuildDate=2025-03-01T12:00:00Z'")
}

func TestPrintH2Header(t *testing.T) {
	buf := captureConsole(t)
	PrintH2Header("Tests")
	assert.Equal(t, "\n=== Tests ===\n", buf.String())
}

func TestRun_MissingCommand(t *testing.T) {
	buf := captureConsole(t)
	err := Run("ghost", "lintfix-no-such-command-xyz")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "✗ ghost failed")
}

func TestUnformatted(t *testing.T) {
	out := "cmd/lintfix/main.go\n_examples/x/y.go\npkg/patch/testdata/a.go\n\n"
	assert.Equal(t, []string{"cmd/lintfix/main.go"}, unformatted(out))
}

func TestClean(t *testing.T) {
	captureConsole(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coverage.out"), nil, 0o644))

	require.NoError(t, Clean())
	assert.NoDirExists(t, filepath.Join(dir, "bin"))
	assert.NoFileExists(t, filepath.Join(dir, "coverage.out"))
}
