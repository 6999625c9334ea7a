package patch

import "strings"

// occurrence is one code (not string, not comment) appearance of an
// identifier on a line.
type occurrence struct {
	start, end int
	top        byte // innermost open bracket on this line, or 0
	prev, next byte // nearest non-space bytes around the word, or 0
	member     bool // obj.name or obj?.name
	key        bool // { name: value }
	shorthand  bool // { name } or { name = fallback }
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func isIdent(s string) bool {
	if s == "" || ('0' <= s[0] && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// scanIdent finds every whole-word occurrence of name in the code portion of
// line. String and template literals, and line and block comments, are
// skipped. Bracket nesting is tracked per line only.
func scanIdent(line, name string) []occurrence {
	var (
		out          []occurrence
		stack        []byte
		quote        byte
		blockComment bool
	)
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		case blockComment:
			if strings.HasPrefix(line[i:], "*/") {
				blockComment = false
				i += 2
				continue
			}
			i++
			continue
		case strings.HasPrefix(line[i:], "//"):
			return out
		case strings.HasPrefix(line[i:], "/*"):
			blockComment = true
			i += 2
			continue
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '{' || c == '(' || c == '[':
			stack = append(stack, c)
		case c == '}' || c == ')' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case isIdentByte(c):
			j := i
			for j < len(line) && isIdentByte(line[j]) {
				j++
			}
			if line[i:j] == name {
				var top byte
				if len(stack) > 0 {
					top = stack[len(stack)-1]
				}
				out = append(out, classifyOccurrence(line, i, j, top))
			}
			i = j
			continue
		}
		i++
	}
	return out
}

func classifyOccurrence(line string, start, end int, top byte) occurrence {
	o := occurrence{start: start, end: end, top: top}

	p := start - 1
	for p >= 0 && (line[p] == ' ' || line[p] == '\t') {
		p--
	}
	if p >= 0 {
		o.prev = line[p]
		if o.prev == '.' && (p == 0 || line[p-1] != '.') {
			o.member = true
		}
	}

	n := end
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	var after byte
	if n < len(line) {
		o.next = line[n]
		if n+1 < len(line) {
			after = line[n+1]
		}
	}

	if top == '{' {
		switch {
		case o.next == ':':
			o.key = true
		case o.prev == '{' || o.prev == ',':
			switch o.next {
			case ',', '}', 0:
				o.shorthand = true
			case '=':
				o.shorthand = after != '=' && after != '>'
			}
		}
	}
	return o
}

// codeRefs filters occurrences down to bindings and references: property
// accesses and object keys name something else.
func codeRefs(occs []occurrence) []occurrence {
	out := occs[:0:0]
	for _, o := range occs {
		if o.member || o.key {
			continue
		}
		out = append(out, o)
	}
	return out
}

// rename replaces each occurrence with newName, expanding shorthand
// properties so the property name survives.
func rename(line string, occs []occurrence, name, newName string) string {
	var b strings.Builder
	last := 0
	for _, o := range occs {
		b.WriteString(line[last:o.start])
		if o.shorthand {
			b.WriteString(name)
			b.WriteString(": ")
		}
		b.WriteString(newName)
		last = o.end
	}
	b.WriteString(line[last:])
	return b.String()
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// commentOut turns a line into a line comment, keeping its indentation.
func commentOut(line string) string {
	ws := leadingSpace(line)
	return ws + "// " + line[len(ws):]
}
