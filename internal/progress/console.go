// Package progress reports pipeline phases to the terminal: an interactive
// bubbletea view when attached to a TTY, plain status lines otherwise.
package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Console prints status lines in the style of the build tasks.
type Console struct {
	out io.Writer

	header  *color.Color
	info    *color.Color
	success *color.Color
	warning *color.Color
	failure *color.Color
	dim     *color.Color
}

// NewConsole returns a Console writing to out. noColor strips all styling.
func NewConsole(out io.Writer, noColor bool) *Console {
	c := &Console{
		out:     out,
		header:  color.New(color.FgBlue, color.Bold),
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}
	if noColor {
		for _, col := range []*color.Color{c.header, c.info, c.success, c.warning, c.failure, c.dim} {
			col.DisableColor()
		}
	}
	return c
}

// Header prints a section header.
func (c *Console) Header(title string) {
	fmt.Fprintln(c.out)
	c.header.Fprintf(c.out, "=== %s ===\n", title)
}

// Success prints a success message.
func (c *Console) Success(format string, a ...any) {
	c.line(c.success, "✓", format, a...)
}

// Warning prints a warning message.
func (c *Console) Warning(format string, a ...any) {
	c.line(c.warning, "⚠", format, a...)
}

// Error prints an error message.
func (c *Console) Error(format string, a ...any) {
	c.line(c.failure, "✗", format, a...)
}

// Info prints an informational message.
func (c *Console) Info(format string, a ...any) {
	c.line(c.info, "•", format, a...)
}

// Dim prints de-emphasized text, indented.
func (c *Console) Dim(format string, a ...any) {
	c.dim.Fprintf(c.out, "    "+strings.TrimRight(format, "\n")+"\n", a...)
}

func (c *Console) line(col *color.Color, icon, format string, a ...any) {
	col.Fprint(c.out, icon)
	fmt.Fprintf(c.out, " "+format+"\n", a...)
}
