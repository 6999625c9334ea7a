//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/dkoosis/lintfix/internal/magetasks"
)

// Default target: build the binary.
var Default = Build

func init() {
	if err := magetasks.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}

// Build builds the lintfix binary.
func Build() error {
	return magetasks.BuildAll()
}

// Clean removes build artifacts.
func Clean() error {
	return magetasks.Clean()
}

// QA runs lint and tests, then builds.
func QA() {
	mg.SerialDeps(Lint.All, Test.All, Build)
	magetasks.Console.Success("QA complete")
}

// Lint namespace for linting commands.
type Lint mg.Namespace

// All runs all linters.
func (Lint) All() error {
	return magetasks.LintAll()
}

// Format checks gofmt.
func (Lint) Format() error {
	return magetasks.LintFormat()
}

// Vet runs go vet.
func (Lint) Vet() error {
	return magetasks.LintVet()
}

// Golangci runs golangci-lint.
func (Lint) Golangci() error {
	return magetasks.LintGolangci()
}

// Fix runs golangci-lint with auto-fixes.
func (Lint) Fix() error {
	return magetasks.LintFix()
}

// Test namespace for testing commands.
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return magetasks.TestAll()
}

// Coverage runs tests with coverage.
func (Test) Coverage() error {
	return magetasks.TestCoverage()
}

// Race runs tests with the race detector.
func (Test) Race() error {
	return magetasks.TestRace()
}
