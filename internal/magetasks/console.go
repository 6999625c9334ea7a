package magetasks

import (
	"fmt"
	"os"

	"github.com/magefile/mage/sh"

	"github.com/dkoosis/lintfix/internal/progress"
)

// Console prints task status. Colour follows NO_COLOR and CI.
var Console = progress.NewConsole(os.Stdout, os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "")

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	Console.Header(title)
}

// Run runs a command with its output attached to the terminal and reports
// the outcome under label.
func Run(label, cmd string, args ...string) error {
	Console.Info("%s", label)
	if err := sh.RunV(cmd, args...); err != nil {
		Console.Error("%s failed", label)
		return fmt.Errorf("%s: %w", label, err)
	}
	Console.Success("%s", label)
	return nil
}
