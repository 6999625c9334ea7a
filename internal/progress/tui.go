package progress

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/lintfix/internal/pipeline"
)

type eventKind int

const (
	eventStarted eventKind = iota
	eventFinished
	eventOutput
)

type event struct {
	kind   eventKind
	phase  pipeline.Phase
	result pipeline.PhaseResult
	line   string
	at     time.Time
}

type eventMsg event
type doneMsg struct{}

// TUI shows the pipeline phases with a spinner on the running one. It
// implements pipeline.Observer and pipeline.LineObserver.
type TUI struct {
	events  chan event
	done    chan struct{}
	program *tea.Program
	err     error
}

// NewTUI prepares a TUI writing to out. Pressing q or ctrl+c calls cancel.
func NewTUI(title string, out io.Writer, cancel context.CancelFunc) *TUI {
	t := &TUI{
		events: make(chan event, 256),
		done:   make(chan struct{}),
	}
	t.program = tea.NewProgram(newModel(title, t.events, cancel), tea.WithOutput(out))
	return t
}

// Start runs the program in the background.
func (t *TUI) Start() {
	go func() {
		defer close(t.done)
		_, t.err = t.program.Run()
	}()
}

// Stop lets the view render its final state and waits for it to exit.
func (t *TUI) Stop() error {
	close(t.events)
	<-t.done
	return t.err
}

func (t *TUI) PhaseStarted(p pipeline.Phase) {
	t.send(event{kind: eventStarted, phase: p, at: time.Now()})
}

func (t *TUI) PhaseFinished(r pipeline.PhaseResult) {
	t.send(event{kind: eventFinished, phase: r.Phase, result: r})
}

func (t *TUI) PhaseOutput(p pipeline.Phase, line string) {
	t.send(event{kind: eventOutput, phase: p, line: line})
}

func (t *TUI) send(e event) {
	select {
	case t.events <- e:
	case <-t.done:
	}
}

type rowState int

const (
	rowPending rowState = iota
	rowRunning
	rowFinished
)

type row struct {
	phase   pipeline.Phase
	state   rowState
	started time.Time
	result  pipeline.PhaseResult
}

type model struct {
	title   string
	events  <-chan event
	cancel  context.CancelFunc
	spinner spinner.Model
	rows    []row
	index   map[pipeline.Phase]int
	last    string
	width   int
	done    bool
	styles  styles
}

type styles struct {
	title   lipgloss.Style
	name    lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	spinner lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		name:    lipgloss.NewStyle().Width(10),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		spinner: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

func newModel(title string, events <-chan event, cancel context.CancelFunc) model {
	st := defaultStyles()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.spinner

	rows := make([]row, len(pipeline.Phases))
	index := make(map[pipeline.Phase]int, len(pipeline.Phases))
	for i, p := range pipeline.Phases {
		rows[i] = row{phase: p}
		index[p] = i
	}
	return model{
		title:   title,
		events:  events,
		cancel:  cancel,
		spinner: sp,
		rows:    rows,
		index:   index,
		width:   80,
		styles:  st,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m model) listen() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(e)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case eventMsg:
		m.apply(event(msg))
		return m, m.listen()
	case doneMsg:
		m.done = true
		m.last = ""
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) apply(e event) {
	i, ok := m.index[e.phase]
	if !ok {
		return
	}
	switch e.kind {
	case eventStarted:
		m.rows[i].state = rowRunning
		m.rows[i].started = e.at
		m.last = ""
	case eventFinished:
		m.rows[i].state = rowFinished
		m.rows[i].result = e.result
	case eventOutput:
		if line := strings.TrimSpace(e.line); line != "" {
			m.last = line
		}
	}
}

func (m model) View() string {
	var b strings.Builder
	header := m.title
	if !m.done {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(m.styles.title.Render(header))
	b.WriteString("\n\n")

	for _, r := range m.rows {
		b.WriteString("  ")
		b.WriteString(m.icon(r))
		b.WriteString(" ")
		b.WriteString(m.styles.name.Render(r.phase.String()))
		b.WriteString(m.styles.muted.Render(m.detail(r)))
		b.WriteString("\n")
	}
	if m.last != "" {
		b.WriteString("\n  ")
		b.WriteString(m.styles.muted.Render(truncate(m.last, m.width-4)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) icon(r row) string {
	switch r.state {
	case rowRunning:
		return m.spinner.View()
	case rowFinished:
		switch r.result.Status {
		case pipeline.StatusOK:
			return m.styles.ok.Render("✓")
		case pipeline.StatusWarn:
			return m.styles.warn.Render("⚠")
		case pipeline.StatusFail:
			return m.styles.fail.Render("✗")
		default:
			return m.styles.muted.Render("-")
		}
	default:
		return m.styles.muted.Render("○")
	}
}

func (m model) detail(r row) string {
	var s string
	switch r.state {
	case rowRunning:
		s = formatDuration(time.Since(r.started))
	case rowFinished:
		if r.result.Duration > 0 {
			s = formatDuration(r.result.Duration)
		}
		if r.result.Detail != "" {
			if s != "" {
				s += "  "
			}
			s += r.result.Detail
		}
	}
	return truncate(s, m.width-16)
}

func truncate(s string, width int) string {
	if width < 10 {
		width = 10
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
