// Package render turns lintfix patterns into terminal, LLM or JSON output.
package render

import "github.com/dkoosis/lintfix/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// ForFormat returns the renderer for format ("terminal", "llm" or "json").
// Unknown formats fall back to the terminal renderer.
func ForFormat(format string, theme Theme, width int) Renderer {
	switch format {
	case "llm":
		return NewLLM()
	case "json":
		return NewJSON()
	default:
		return NewTerminal(theme, width)
	}
}
