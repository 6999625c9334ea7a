package patch

import (
	"regexp"
	"strings"
)

// Edit is a single-line replacement proposed by a rewriter.
type Edit struct {
	Line     int // 0-based index into the file's lines
	Text     string
	Strategy Strategy
}

// BindingRewriter recognizes one source shape that binds an identifier and
// proposes a one-line edit that marks the binding as intentionally unused.
// Rewriters never modify lines; the Patcher applies the edit.
type BindingRewriter interface {
	Name() string
	Rewrite(lines []string, idx int, name string) (Edit, bool)
}

var (
	// import [type] [Default,] { a, b as c } from 'x';
	importBraceRe = regexp.MustCompile(`^(\s*import\s+(?:type\s+)?)([^{'"]*?)\{([^}]*)\}(.*)$`)

	// one entry of a multi-line named import list
	importEntryRe = regexp.MustCompile(`^\s*((?:type\s+)?[A-Za-z_$][\w$]*(?:\s+as\s+[A-Za-z_$][\w$]*)?)\s*,?\s*$`)

	importOpenRe = regexp.MustCompile(`^\s*import\s+(?:type\s+)?(?:[A-Za-z_$][\w$]*\s*,\s*)?\{[^}]*$`)

	// import Name from 'x'; import * as Name from 'x';
	defaultOnlyRe = regexp.MustCompile(`^\s*import\s+(?:type\s+)?(?:\*\s+as\s+)?([A-Za-z_$][\w$]*)\s+from\s+['"][^'"]*['"]\s*;?\s*$`)

	// import Name, { a } from 'x'; import Name, * as ns from 'x';
	defaultWithRestRe = regexp.MustCompile(`^(\s*import\s+(?:type\s+)?)([A-Za-z_$][\w$]*)\s*,\s*(\{.*|\*\s*as\s+.*)$`)

	importLineRe = regexp.MustCompile(`^\s*(?:import\b|export\s*(?:type\s*)?[{*])`)

	declKeywordRe = regexp.MustCompile(`\b(?:const|let|var)\s+`)
)

// importLocalName returns the local binding an import entry introduces.
func importLocalName(entry string) string {
	f := strings.Fields(entry)
	if len(f) > 1 && f[0] == "type" {
		f = f[1:]
	}
	if len(f) >= 3 && f[len(f)-2] == "as" {
		return f[len(f)-1]
	}
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// ImportListRewriter removes one entry from a brace-delimited named import.
// A list left empty comments the line out, or drops just the braces when a
// default import shares the line. An entry on its own line inside a
// multi-line import is commented out.
type ImportListRewriter struct{}

func (ImportListRewriter) Name() string { return "import-list" }

func (r ImportListRewriter) Rewrite(lines []string, idx int, name string) (Edit, bool) {
	line := lines[idx]
	m := importBraceRe.FindStringSubmatch(line)
	if m == nil {
		return r.rewriteMultiline(lines, idx, name)
	}
	prefix, def, inner, rest := m[1], m[2], m[3], m[4]

	lead := leadingSpace(inner)
	trail := inner[len(strings.TrimRight(inner, " \t")):]
	body := strings.TrimSpace(inner)
	trailingComma := strings.HasSuffix(body, ",")
	body = strings.TrimSpace(strings.TrimSuffix(body, ","))

	var kept []string
	removed := false
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !removed && importLocalName(part) == name {
			removed = true
			continue
		}
		kept = append(kept, part)
	}
	if !removed {
		return Edit{}, false
	}

	if len(kept) == 0 {
		defName := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(def), ","))
		if defName != "" {
			return Edit{Line: idx, Text: prefix + defName + rest, Strategy: PruneImport}, true
		}
		return Edit{Line: idx, Text: commentOut(line), Strategy: CommentOutLine}, true
	}

	list := strings.Join(kept, ", ")
	if trailingComma {
		list += ","
	}
	text := prefix + def + "{" + lead + list + trail + "}" + rest
	return Edit{Line: idx, Text: text, Strategy: PruneImport}, true
}

// maxImportSpan bounds the upward search for the opening line of a
// multi-line import.
const maxImportSpan = 64

func (ImportListRewriter) rewriteMultiline(lines []string, idx int, name string) (Edit, bool) {
	m := importEntryRe.FindStringSubmatch(lines[idx])
	if m == nil || importLocalName(m[1]) != name {
		return Edit{}, false
	}
	for j := idx - 1; j >= 0 && j >= idx-maxImportSpan; j-- {
		if importOpenRe.MatchString(lines[j]) {
			return Edit{Line: idx, Text: commentOut(lines[idx]), Strategy: CommentOutLine}, true
		}
		if !importEntryRe.MatchString(lines[j]) {
			break
		}
	}
	return Edit{}, false
}

// DefaultImportRewriter handles a default or namespace import of name.
type DefaultImportRewriter struct{}

func (DefaultImportRewriter) Name() string { return "default-import" }

func (DefaultImportRewriter) Rewrite(lines []string, idx int, name string) (Edit, bool) {
	line := lines[idx]
	if m := defaultOnlyRe.FindStringSubmatch(line); m != nil && m[1] == name {
		return Edit{Line: idx, Text: commentOut(line), Strategy: CommentOutLine}, true
	}
	if m := defaultWithRestRe.FindStringSubmatch(line); m != nil && m[2] == name {
		return Edit{Line: idx, Text: m[1] + m[3], Strategy: PruneImport}, true
	}
	return Edit{}, false
}

// DeclarationRewriter prefixes name with an underscore everywhere on a
// const/let/var line that declares it.
type DeclarationRewriter struct{}

func (DeclarationRewriter) Name() string { return "declaration" }

func (DeclarationRewriter) Rewrite(lines []string, idx int, name string) (Edit, bool) {
	line := lines[idx]
	loc := declKeywordRe.FindStringIndex(line)
	if loc == nil {
		return Edit{}, false
	}
	refs := codeRefs(scanIdent(line, name))
	if len(refs) == 0 {
		return Edit{}, false
	}
	end := declarationEnd(line, loc[1])
	declared := false
	for _, o := range refs {
		if o.start >= loc[1] && o.start < end {
			declared = true
			break
		}
	}
	if !declared {
		return Edit{}, false
	}
	return Edit{Line: idx, Text: rename(line, refs, name, "_"+name), Strategy: RenameDeclaration}, true
}

// declarationEnd returns the index where the binding pattern starting at
// from ends: the first top-level assignment, semicolon or closing bracket.
func declarationEnd(line string, from int) int {
	depth := 0
	var quote byte
	for i := from; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
			if depth < 0 {
				return i
			}
		case ';':
			if depth == 0 {
				return i
			}
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(line) && (line[i+1] == '=' || line[i+1] == '>') {
				i++
				continue
			}
			if i > 0 && strings.ContainsRune("!<>=", rune(line[i-1])) {
				continue
			}
			return i
		}
	}
	return len(line)
}

// UsageRewriter prefixes the first code reference to name, which covers
// function parameters and other bindings the declaration shapes miss.
// Occurrences inside strings or comments are never touched.
type UsageRewriter struct{}

func (UsageRewriter) Name() string { return "usage" }

func (UsageRewriter) Rewrite(lines []string, idx int, name string) (Edit, bool) {
	line := lines[idx]
	if importLineRe.MatchString(line) {
		return Edit{}, false
	}
	refs := codeRefs(scanIdent(line, name))
	if len(refs) == 0 {
		return Edit{}, false
	}
	return Edit{Line: idx, Text: rename(line, refs[:1], name, "_"+name), Strategy: RenameUsage}, true
}
