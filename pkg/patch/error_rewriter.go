package patch

import (
	"regexp"
	"strings"
)

// typeNames are never renamed when they follow "error:" since that is a type
// annotation rather than a destructuring alias.
var typeNames = map[string]bool{
	"string": true, "number": true, "boolean": true, "unknown": true, "any": true,
	"null": true, "undefined": true, "never": true, "object": true, "Error": true,
}

var (
	destructOpenRe = regexp.MustCompile(`\b(?:const|let|var)\s*\{[^}]*$`)
	destructHeadRe = regexp.MustCompile(`(?:\b(?:const|let|var)\s*|\(\s*)\{`)
	destructTailRe = regexp.MustCompile(`\}\s*(?::[^=]*)?=[^=>]`)
)

// CatchClauseRewriter renames the binding of a catch clause, keeping the
// original spacing and any type annotation.
type CatchClauseRewriter struct{}

func (CatchClauseRewriter) Name() string { return "catch-clause" }

func (CatchClauseRewriter) Rewrite(lines []string, idx int, name string) (Edit, bool) {
	re := regexp.MustCompile(`\bcatch(\s*)\((\s*)` + regexp.QuoteMeta(name) + `(\s*(?::[^)]*)?)\)`)
	line := lines[idx]
	m := re.FindStringSubmatchIndex(line)
	if m == nil {
		return Edit{}, false
	}
	// m[5] is the end of the whitespace before the binding.
	text := line[:m[5]] + "_" + line[m[5]:]
	return Edit{Line: idx, Text: text, Strategy: RenameErrorBinding}, true
}

// DestructuredAliasRewriter renames the local half of "{ error: alias }",
// searching the target line and up to Lookback lines above it.
type DestructuredAliasRewriter struct {
	Lookback int
}

func (DestructuredAliasRewriter) Name() string { return "destructured-alias" }

func (r DestructuredAliasRewriter) Rewrite(lines []string, idx int, name string) (Edit, bool) {
	re := regexp.MustCompile(`(?:^|[{,])\s*` + regexp.QuoteMeta(name) + `\s*:\s*([A-Za-z_$][\w$]*)`)
	for j := idx; j >= 0 && j >= idx-r.Lookback; j-- {
		line := lines[j]
		for _, m := range re.FindAllStringSubmatchIndex(line, -1) {
			alias := line[m[2]:m[3]]
			if strings.HasPrefix(alias, "_") || typeNames[alias] {
				continue
			}
			return Edit{Line: j, Text: line[:m[2]] + "_" + line[m[2]:], Strategy: RenameErrorBinding}, true
		}
	}
	return Edit{}, false
}

// DestructuredShorthandRewriter expands a shorthand "{ error }" binding to
// "{ error: _error }". The line must sit in a destructuring pattern: one
// opened on this line or up to Lookback lines above, or closed by "} =".
type DestructuredShorthandRewriter struct {
	Lookback int
}

func (DestructuredShorthandRewriter) Name() string { return "destructured-shorthand" }

func (r DestructuredShorthandRewriter) Rewrite(lines []string, idx int, name string) (Edit, bool) {
	re := regexp.MustCompile(`(?:^|[{,])\s*(` + regexp.QuoteMeta(name) + `)\s*(?:,|\}|=[^=>]|$)`)
	line := lines[idx]
	m := re.FindStringSubmatchIndex(line)
	if m == nil {
		return Edit{}, false
	}
	start, end := m[2], m[3]
	if !r.inPattern(lines, idx, start, end) {
		return Edit{}, false
	}
	text := line[:end] + ": _" + name + line[end:]
	return Edit{Line: idx, Text: text, Strategy: RenameErrorBinding}, true
}

func (r DestructuredShorthandRewriter) inPattern(lines []string, idx, start, end int) bool {
	line := lines[idx]
	if destructHeadRe.MatchString(line[:start]) || destructTailRe.MatchString(line[end:]) {
		return true
	}
	for j := idx - 1; j >= 0 && j >= idx-r.Lookback; j-- {
		if destructOpenRe.MatchString(lines[j]) {
			return true
		}
		if strings.Contains(lines[j], "}") {
			return false
		}
	}
	return false
}

// StandaloneErrorRewriter prefixes the first code reference to the error
// binding on the line.
type StandaloneErrorRewriter struct{}

func (StandaloneErrorRewriter) Name() string { return "standalone-error" }

func (StandaloneErrorRewriter) Rewrite(lines []string, idx int, name string) (Edit, bool) {
	e, ok := UsageRewriter{}.Rewrite(lines, idx, name)
	if !ok {
		return Edit{}, false
	}
	e.Strategy = RenameErrorBinding
	return e, true
}
