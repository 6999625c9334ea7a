package magetasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"

	"github.com/dkoosis/lintfix/internal/runner"
)

var golangciDisabled = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign"

// LintAll runs every linter. Optional linters that are not installed are
// skipped with a warning.
func LintAll() error {
	PrintH2Header("Lint")
	var errs []error
	for _, lint := range []func() error{LintFormat, LintVet, LintGolangci} {
		if err := lint(); err != nil && !runner.IsCommandNotFound(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	Console.Success("All linters passed")
	return nil
}

// LintFormat fails when any file needs gofmt.
func LintFormat() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if files := unformatted(out); len(files) > 0 {
		Console.Error("gofmt: %d files need formatting", len(files))
		for _, f := range files {
			Console.Dim("%s", f)
		}
		return fmt.Errorf("gofmt: %s", strings.Join(files, ", "))
	}
	Console.Success("gofmt")
	return nil
}

// unformatted filters gofmt -l output down to files outside reference
// trees.
func unformatted(out string) []string {
	var files []string
	for _, f := range strings.Split(out, "\n") {
		f = strings.TrimSpace(f)
		if f == "" || strings.HasPrefix(f, "_") || strings.Contains(f, "/testdata/") {
			continue
		}
		files = append(files, f)
	}
	return files
}

// LintVet runs go vet.
func LintVet() error {
	return Run("go vet", "go", "vet", "./...")
}

// LintGolangci runs golangci-lint.
func LintGolangci() error {
	err := Run("golangci-lint", "golangci-lint", "run", golangciDisabled, "--timeout=5m", "./...")
	if runner.IsCommandNotFound(err) {
		Console.Warning("golangci-lint not found (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
	}
	return err
}

// LintFix runs golangci-lint with auto-fixes.
func LintFix() error {
	return Run("golangci-lint --fix", "golangci-lint", "run", "--fix", golangciDisabled, "--timeout=5m", "./...")
}
