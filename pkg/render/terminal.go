package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/lintfix/pkg/pattern"
)

// Terminal renders patterns as styled terminal output via lipgloss.
// A Terminal is not safe for concurrent use.
type Terminal struct {
	theme Theme
	width int
	title cases.Caser
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width, title: cases.Title(language.English)}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	case *pattern.TestTable:
		return t.renderTestTable(v)
	case *pattern.Sparkline:
		return t.renderSparkline(v)
	case *pattern.Comparison:
		return t.renderComparison(v)
	case *pattern.Error:
		return t.theme.Bad.Render(t.theme.Icons.Fail+" "+v.Source+": "+v.Message) + "\n"
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}
	labelWidth := 0
	for _, m := range s.Metrics {
		labelWidth = max(labelWidth, runewidth.StringWidth(m.Label))
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + padRight(m.Label+":", labelWidth+1) + " " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		header := l.Label
		if l.TotalCount > len(l.Items) {
			header += fmt.Sprintf(" (top %d of %d)", len(l.Items), l.TotalCount)
		}
		sb.WriteString(t.theme.Bold.Render(header))
		sb.WriteString("\n")
	}

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		maxName = max(maxName, runewidth.StringWidth(item.Name))
		maxMetric = max(maxMetric, runewidth.StringWidth(item.Metric))
	}
	maxName = min(maxName, 50)

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Faint.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		sb.WriteString(t.theme.Accent.Render(padRight(truncate(item.Name, maxName), maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Warn.Render(padLeft(item.Metric, maxMetric)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderTestTable(tt *pattern.TestTable) string {
	if len(tt.Results) == 0 {
		return ""
	}
	var sb strings.Builder
	if tt.Label != "" {
		sb.WriteString(t.theme.Bold.Render(tt.Label))
		sb.WriteString("\n")
	}

	maxName, maxDur := 0, 0
	for _, r := range tt.Results {
		maxName = max(maxName, runewidth.StringWidth(r.Name))
		maxDur = max(maxDur, len(r.Duration))
	}
	maxName = min(maxName, 60)
	detailWidth := max(t.width-maxName-maxDur-10, 20)

	for _, r := range tt.Results {
		sb.WriteString("  ")
		icon, style := t.statusIconStyle(r.Status)
		sb.WriteString(style.Render(icon))
		sb.WriteString(" ")
		sb.WriteString(padRight(truncate(r.Name, maxName), maxName))

		if r.Count > 0 {
			sb.WriteString(t.theme.Faint.Render(fmt.Sprintf("  %d", r.Count)))
		}
		if maxDur > 0 {
			sb.WriteString("  ")
			sb.WriteString(t.theme.Faint.Render(padLeft(r.Duration, maxDur)))
		}
		if r.Details != "" {
			lines := strings.Split(r.Details, "\n")
			sb.WriteString("  ")
			sb.WriteString(t.theme.Faint.Render(truncate(lines[0], detailWidth)))
			for _, line := range lines[1:] {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Faint.Render(truncate(line, t.width-4)))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderSparkline(s *pattern.Sparkline) string {
	if len(s.Counts) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Accent.Render(s.Label + ": "))
	}
	sb.WriteString(t.theme.Good.Render(bars(s.Counts)))
	sb.WriteString(t.theme.Faint.Render(" " + plural(s.Latest(), "issue")))
	sb.WriteString("\n")
	return sb.String()
}

var barRunes = []rune("▁▂▃▄▅▆▇█")

// bars scales counts between their own minimum and maximum.
func bars(counts []int) string {
	lo, hi := slices.Min(counts), slices.Max(counts)
	span := max(hi-lo, 1)
	top := len(barRunes) - 1
	var b strings.Builder
	for _, n := range counts {
		b.WriteRune(barRunes[(n-lo)*top/span])
	}
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// renderComparison shows before/after counts. Fewer is better, so a drop
// renders as good.
func (t *Terminal) renderComparison(c *pattern.Comparison) string {
	if len(c.Changes) == 0 {
		return ""
	}
	var sb strings.Builder
	if c.Label != "" {
		sb.WriteString(t.theme.Bold.Render(c.Label))
		sb.WriteString("\n")
	}

	labels := make([]string, len(c.Changes))
	width := 0
	for i, item := range c.Changes {
		labels[i] = t.title.String(strings.ReplaceAll(item.Label, "-", " "))
		width = max(width, runewidth.StringWidth(labels[i]))
	}

	for i, item := range c.Changes {
		sb.WriteString("  ")
		sb.WriteString(padRight(labels[i], width) + "  ")
		sb.WriteString(t.theme.Faint.Render(fmt.Sprintf("%d → %d", item.Before, item.After)))
		sb.WriteString(" ")

		d := item.Delta()
		arrow, style := t.theme.Icons.Same, t.theme.Faint
		switch {
		case d > 0:
			arrow, style = t.theme.Icons.More, t.theme.Bad
		case d < 0:
			arrow, style = t.theme.Icons.Fewer, t.theme.Good
		}
		sb.WriteString(style.Render(fmt.Sprintf("%s %d", arrow, abs(d))))
		sb.WriteString("\n")
	}
	return sb.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Good
	case "error":
		return t.theme.Icons.Fail, t.theme.Bad
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warn
	default:
		return t.theme.Icons.Info, t.theme.Accent
	}
}

func (t *Terminal) statusIconStyle(status string) (string, lipgloss.Style) {
	switch status {
	case "pass":
		return t.theme.Icons.Pass, t.theme.Good
	case "fail":
		return t.theme.Icons.Fail, t.theme.Bad
	case "skip":
		return t.theme.Icons.Warn, t.theme.Warn
	case "wip":
		return t.theme.Icons.Skip, t.theme.Faint
	default:
		return t.theme.Icons.Info, t.theme.Faint
	}
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
