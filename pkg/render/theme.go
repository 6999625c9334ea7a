package render

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles and glyphs of the terminal renderer.
type Theme struct {
	Name   string
	Accent lipgloss.Style // section names, rule ids
	Good   lipgloss.Style // fixed issues, passing phases
	Warn   lipgloss.Style
	Bad    lipgloss.Style // remaining issues, failed phases
	Faint  lipgloss.Style
	Bold   lipgloss.Style
	Icons  Icons
}

// Icons are the glyphs for phase status and issue-count direction.
type Icons struct {
	Pass string
	Fail string
	Warn string
	Skip string
	Info string

	Fewer string // fewer issues than before
	More  string
	Same  string
}

// palette is a set of ANSI 256 colour codes. The zero palette means no
// colour at all.
type palette struct {
	accent, good, warn, bad, faint string
}

func newTheme(name string, p palette, icons Icons) Theme {
	fg := func(code string) lipgloss.Style {
		s := lipgloss.NewStyle()
		if code == "" {
			return s
		}
		return s.Foreground(lipgloss.Color(code))
	}
	return Theme{
		Name:   name,
		Accent: fg(p.accent),
		Good:   fg(p.good),
		Warn:   fg(p.warn),
		Bad:    fg(p.bad),
		Faint:  fg(p.faint),
		Bold:   lipgloss.NewStyle().Bold(true),
		Icons:  icons,
	}
}

var arrows = Icons{Fewer: "↓", More: "↑", Same: "="}

// DefaultTheme is the bright theme used unless another is configured.
func DefaultTheme() Theme {
	icons := arrows
	icons.Pass, icons.Fail, icons.Warn, icons.Skip, icons.Info = "✓", "✗", "⚠", "○", "●"
	return newTheme("default", palette{accent: "39", good: "34", warn: "214", bad: "196", faint: "242"}, icons)
}

// OrcaTheme is a low-contrast theme for long sessions.
func OrcaTheme() Theme {
	icons := arrows
	icons.Pass, icons.Fail, icons.Warn, icons.Skip, icons.Info = "✓", "✗", "!", "○", "·"
	return newTheme("orca", palette{accent: "75", good: "108", warn: "179", bad: "167", faint: "245"}, icons)
}

// MonoTheme uses no colour and only ASCII glyphs, for NO_COLOR and dumb
// terminals.
func MonoTheme() Theme {
	return newTheme("mono", palette{}, Icons{
		Pass: "+", Fail: "x", Warn: "!", Skip: "-", Info: "*",
		Fewer: "v", More: "^", Same: "=",
	})
}

var themes = map[string]func() Theme{
	"default": DefaultTheme,
	"orca":    OrcaTheme,
	"mono":    MonoTheme,
}

// ThemeNames lists the names ThemeByName accepts.
var ThemeNames = []string{"default", "orca", "mono"}

// ThemeByName returns the named theme, or DefaultTheme for an unknown name.
func ThemeByName(name string) Theme {
	if f, ok := themes[name]; ok {
		return f()
	}
	return DefaultTheme()
}
