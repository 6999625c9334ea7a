package diagnostic

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// DefaultExtensions are the source extensions a header line may end in.
var DefaultExtensions = []string{
	".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".mts", ".cts", ".vue", ".svelte",
}

// Options tunes text parsing.
type Options struct {
	// Extensions recognized on file header lines. Empty means DefaultExtensions.
	Extensions []string
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions
	}
	return o.Extensions
}

var (
	ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

	// rowRe matches "<line>:<col> <severity> <rest>".
	rowRe = regexp.MustCompile(`^\s*(\d+):(\d+)\s+(error|warning)\s+(.*?)\s*$`)

	// spacedRuleRe splits a stylish row's rest into message and rule when the
	// rule is set off by two or more spaces, which is how eslint aligns it.
	spacedRuleRe = regexp.MustCompile(`^(.*?)\s{2,}(\S+)$`)

	ruleIDRe = regexp.MustCompile(`^(?:@[\w.-]+/)?[A-Za-z][\w.-]*(?:/[\w.-]+)*$`)

	// bareRuleRe accepts a single-space separated trailing token only when it
	// is unmistakably a rule id: scoped, namespaced or kebab-case.
	bareRuleRe = regexp.MustCompile(`^(?:@[\w.-]+/[\w./-]+|[\w.-]+/[\w./-]+|[a-z][a-z0-9]*(?:-[a-z0-9]+)+)$`)

	driveRe = regexp.MustCompile(`^[A-Za-z]:[\\/]`)
)

// StripANSI removes terminal colour codes.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// Parse parses stylish text output with default options.
func Parse(output string) *Result {
	return ParseWith(output, Options{})
}

// ParseWith parses stylish text output. It never fails: unrecognized lines
// are skipped.
func ParseWith(output string, opts Options) *Result {
	res := newResult()
	exts := opts.extensions()

	current := ""
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for idx := 0; scanner.Scan(); idx++ {
		line := StripANSI(scanner.Text())

		if file, ok := ParseHeader(line, exts); ok {
			current = file
			res.noteFile(file)
			res.Headers[file] = append(res.Headers[file], idx)
			continue
		}

		d, ok := ParseRow(line)
		if !ok || current == "" {
			continue
		}
		d.File = current
		d.LogLine = idx
		res.add(d)
	}
	return res
}

// ParseHeader reports whether line is a bare file path header and returns
// the path.
func ParseHeader(line string, exts []string) (string, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return "", false
	}
	if !strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "./") && !driveRe.MatchString(s) {
		return "", false
	}
	for _, ext := range exts {
		if strings.HasSuffix(s, ext) {
			return s, true
		}
	}
	return "", false
}

// ParseRow parses a "<line>:<col> <severity> <message> [<ruleId>]" row. The
// returned diagnostic has no file and LogLine set to NoLogLine.
func ParseRow(line string) (*Diagnostic, bool) {
	m := rowRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	ln, err := strconv.Atoi(m[1])
	if err != nil || ln < 1 {
		return nil, false
	}
	col, err := strconv.Atoi(m[2])
	if err != nil || col < 1 {
		return nil, false
	}
	sev, err := ParseSeverity(m[3])
	if err != nil {
		return nil, false
	}
	message, rule := splitRule(m[4])
	return &Diagnostic{
		Line:     ln,
		Column:   col,
		Severity: sev,
		Message:  message,
		RuleID:   rule,
		LogLine:  NoLogLine,
	}, true
}

func splitRule(rest string) (message, rule string) {
	if m := spacedRuleRe.FindStringSubmatch(rest); m != nil && ruleIDRe.MatchString(m[2]) {
		return m[1], m[2]
	}
	i := strings.LastIndexAny(rest, " \t")
	if i < 0 {
		return rest, ""
	}
	if tok := rest[i+1:]; bareRuleRe.MatchString(tok) {
		return strings.TrimSpace(rest[:i]), tok
	}
	return rest, ""
}
