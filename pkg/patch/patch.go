// Package patch applies minimal, line-local fixes for unused bindings in
// JavaScript and TypeScript sources.
//
// Fixes are heuristic text rewrites, not AST transformations. Each supported
// source shape is a BindingRewriter; the Patcher tries them in order on the
// reported line, writes at most one changed line back through an optimistic
// concurrency guard, and reports failure as a plain false rather than an
// error the caller must handle.
package patch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dkoosis/lintfix/internal/atomicfile"
	"github.com/dkoosis/lintfix/pkg/classify"
	"github.com/dkoosis/lintfix/pkg/diagnostic"
)

// Strategy names the kind of edit a fix made.
type Strategy int

const (
	StrategyNone Strategy = iota
	RenameDeclaration
	PruneImport
	CommentOutLine
	RenameUsage
	RenameErrorBinding
)

func (s Strategy) String() string {
	switch s {
	case RenameDeclaration:
		return "rename-declaration"
	case PruneImport:
		return "prune-import"
	case CommentOutLine:
		return "comment-out-line"
	case RenameUsage:
		return "rename-usage"
	case RenameErrorBinding:
		return "rename-error-binding"
	default:
		return "none"
	}
}

var (
	// ErrNoMatch means no rewriter recognized the line.
	ErrNoMatch = errors.New("no rewriter matched")
	// ErrLineOutOfRange means the reported line is past the end of the file.
	ErrLineOutOfRange = errors.New("line out of range")
)

// DefaultLookback is how many lines above a reported line are searched for a
// multi-line destructuring pattern.
const DefaultLookback = 2

// DefaultOffsets are the line offsets tried, in order, when fixing an unused
// error binding; the declaration can precede the reported line.
var DefaultOffsets = []int{0, -1, -2, -3}

// FixAttempt records the outcome of one fix.
type FixAttempt struct {
	Diagnostic *diagnostic.Diagnostic
	FilePath   string
	Strategy   Strategy
	Success    bool
	Line       int // 1-based line that was modified, 0 if none
	Reason     string
}

// Patcher applies fixes to files on disk.
type Patcher struct {
	BindingRewriters []BindingRewriter
	ErrorRewriters   []BindingRewriter
	ErrorNames       []string
	Lookback         int
	Offsets          []int
	Logger           *slog.Logger

	// beforeWrite runs between reading and writing a file.
	beforeWrite func(path string)
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLookback sets the destructuring search window.
func WithLookback(n int) Option {
	return func(p *Patcher) { p.Lookback = n }
}

// WithErrorNames sets the binding names treated as caught errors.
func WithErrorNames(names ...string) Option {
	return func(p *Patcher) { p.ErrorNames = names }
}

// WithOffsets sets the line offsets tried for error bindings.
func WithOffsets(offsets ...int) Option {
	return func(p *Patcher) { p.Offsets = offsets }
}

// WithLogger sets the logger for fix events.
func WithLogger(l *slog.Logger) Option {
	return func(p *Patcher) { p.Logger = l }
}

// New returns a Patcher with the standard rewriter chains.
func New(opts ...Option) *Patcher {
	p := &Patcher{
		ErrorNames: []string{"error"},
		Lookback:   DefaultLookback,
		Offsets:    DefaultOffsets,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.Logger == nil {
		p.Logger = slog.New(slog.DiscardHandler)
	}
	p.BindingRewriters = []BindingRewriter{
		ImportListRewriter{},
		DefaultImportRewriter{},
		DeclarationRewriter{},
		UsageRewriter{},
	}
	p.ErrorRewriters = []BindingRewriter{
		CatchClauseRewriter{},
		DestructuredAliasRewriter{Lookback: p.Lookback},
		DestructuredShorthandRewriter{Lookback: p.Lookback},
		StandaloneErrorRewriter{},
	}
	return p
}

// FixUnusedBinding marks name on the given 1-based line as intentionally
// unused. It reports whether the file was changed.
func (p *Patcher) FixUnusedBinding(path string, line int, name string) bool {
	_, err := p.fixBinding(path, line, name)
	return err == nil
}

// FixUnusedErrorBinding renames an unused caught-error binding on the given
// line. It reports whether the file was changed.
func (p *Patcher) FixUnusedErrorBinding(path string, line int) bool {
	_, err := p.fixError(path, line, p.ErrorNames)
	return err == nil
}

// FixErrorBindingNear tries FixUnusedErrorBinding at each configured offset
// from line and stops at the first success.
func (p *Patcher) FixErrorBindingNear(path string, line int) bool {
	_, err := p.fixErrorNear(path, line, p.ErrorNames)
	return err == nil
}

// Apply fixes d according to its category. Relative paths resolve against
// root. A successful fix marks d resolved.
func (p *Patcher) Apply(d *diagnostic.Diagnostic, cat classify.Category, root string) FixAttempt {
	path := d.File
	if !filepath.IsAbs(path) && root != "" {
		path = filepath.Join(root, path)
	}
	attempt := FixAttempt{Diagnostic: d, FilePath: path}

	var (
		e   Edit
		err error
	)
	switch cat {
	case classify.UnusedVars:
		name := diagnostic.BindingName(d.Message)
		if name == "" {
			attempt.Reason = "no binding name in message"
			return attempt
		}
		e, err = p.fixBinding(path, d.Line, name)
	case classify.UnusedErrors:
		names := p.ErrorNames
		if name := diagnostic.BindingName(d.Message); name != "" {
			names = []string{name}
		}
		e, err = p.fixErrorNear(path, d.Line, names)
	default:
		attempt.Reason = fmt.Sprintf("no fix for category %s", cat)
		return attempt
	}

	if err != nil {
		attempt.Reason = err.Error()
		level := slog.LevelDebug
		if errors.Is(err, atomicfile.ErrConcurrentModification) {
			level = slog.LevelWarn
		}
		p.Logger.Log(context.Background(), level, "fix skipped", "file", path, "line", d.Line, "rule", d.RuleID, "reason", attempt.Reason)
		return attempt
	}

	attempt.Success = true
	attempt.Strategy = e.Strategy
	attempt.Line = e.Line + 1
	d.Resolved = true
	p.Logger.Info("fix applied", "file", path, "line", attempt.Line, "strategy", e.Strategy.String())
	return attempt
}

func (p *Patcher) fixBinding(path string, line int, name string) (Edit, error) {
	if !isIdent(name) {
		return Edit{}, fmt.Errorf("%q is not an identifier", name)
	}
	return p.rewriteFile(path, line, func(lines []string, idx int) (Edit, bool) {
		for _, rw := range p.BindingRewriters {
			if e, ok := rw.Rewrite(lines, idx, name); ok && e.Text != lines[e.Line] {
				return e, true
			}
		}
		return Edit{}, false
	})
}

func (p *Patcher) fixError(path string, line int, names []string) (Edit, error) {
	return p.rewriteFile(path, line, func(lines []string, idx int) (Edit, bool) {
		for _, name := range names {
			if !isIdent(name) {
				continue
			}
			for _, rw := range p.ErrorRewriters {
				if e, ok := rw.Rewrite(lines, idx, name); ok && e.Text != lines[e.Line] {
					return e, true
				}
			}
		}
		return Edit{}, false
	})
}

func (p *Patcher) fixErrorNear(path string, line int, names []string) (Edit, error) {
	var firstErr error
	for _, off := range p.Offsets {
		if line+off < 1 {
			continue
		}
		e, err := p.fixError(path, line+off, names)
		if err == nil {
			return e, nil
		}
		// A concurrent writer or an unreadable file will not improve at the
		// next offset.
		if !errors.Is(err, ErrNoMatch) && !errors.Is(err, ErrLineOutOfRange) {
			return Edit{}, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = ErrLineOutOfRange
	}
	return Edit{}, firstErr
}

// rewriteFile reads path, asks match for an edit of the 1-based line and
// writes the result back under the file's read snapshot.
func (p *Patcher) rewriteFile(path string, line int, match func([]string, int) (Edit, bool)) (Edit, error) {
	snap, data, err := atomicfile.Read(path)
	if err != nil {
		return Edit{}, err
	}
	src := splitLines(string(data))
	idx := line - 1
	if idx < 0 || idx >= len(src.lines) {
		return Edit{}, fmt.Errorf("%s:%d: %w", path, line, ErrLineOutOfRange)
	}

	e, ok := match(src.lines, idx)
	if !ok {
		return Edit{}, fmt.Errorf("%s:%d: %w", path, line, ErrNoMatch)
	}
	src.lines[e.Line] = e.Text

	if p.beforeWrite != nil {
		p.beforeWrite(path)
	}
	if err := snap.WriteFile([]byte(src.join())); err != nil {
		return Edit{}, err
	}
	return e, nil
}

// source is a file split into lines with its line endings remembered.
type source struct {
	lines []string
	crlf  []bool
}

func splitLines(s string) source {
	raw := strings.Split(s, "\n")
	src := source{lines: make([]string, len(raw)), crlf: make([]bool, len(raw))}
	for i, l := range raw {
		if strings.HasSuffix(l, "\r") {
			l = l[:len(l)-1]
			src.crlf[i] = true
		}
		src.lines[i] = l
	}
	return src
}

func (s source) join() string {
	var b strings.Builder
	for i, l := range s.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l)
		if s.crlf[i] {
			b.WriteByte('\r')
		}
	}
	return b.String()
}
