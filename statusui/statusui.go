// Package statusui implements the `jasmin-lsp status` inspector (A5): a
// small terminal program that tails a running server's session log file
// and renders the most recent lines alongside a live spinner.
//
// Grounded on the teacher's runner.TUIFormatter (runner/tui.go): the same
// bubbles/spinner + bubbletea + lipgloss stack, the same isatty gate on
// whether to run interactively at all - retargeted from a test-run
// progress tree onto a tailed log file. Nothing is printed after the alt
// screen is left.
package statusui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const maxLines = 200

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)

// Run tails logPath and renders it until the context is cancelled (e.g. by
// Ctrl-C). On a non-TTY output, it falls back to a plain streaming dump
// with no spinner or alt-screen, the same fallback shape as the teacher's
// TUIFormatter uses for non-interactive writers.
func Run(ctx context.Context, logPath string, out *os.File) error {
	if !isatty.IsTerminal(out.Fd()) {
		return tailPlain(ctx, logPath, out)
	}
	return tailInteractive(ctx, logPath, out)
}

func tailPlain(ctx context.Context, logPath string, out io.Writer) error {
	tail, closeFn, err := newTailer(logPath)
	if err != nil {
		return err
	}
	defer closeFn()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-tail.lines:
			if !ok {
				return nil
			}
			fmt.Fprintln(out, line)
		case err := <-tail.errs:
			return err
		}
	}
}

func tailInteractive(ctx context.Context, logPath string, out *os.File) error {
	model := newStatusModel(logPath)

	p := tea.NewProgram(model,
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := finalModel.(*statusModel); ok && m.tailErr != nil {
		return m.tailErr
	}
	return nil
}

type tickMsg time.Time
type logLineMsg string
type tailErrMsg struct{ err error }

type statusModel struct {
	logPath string
	spinner spinner.Model
	lines   []string
	tail    *tailer
	closeFn func()
	tailErr error
}

func newStatusModel(logPath string) *statusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = dimStyle
	return &statusModel{logPath: logPath, spinner: s}
}

func (m *statusModel) Init() tea.Cmd {
	tail, closeFn, err := newTailer(m.logPath)
	if err != nil {
		m.tailErr = err
		return tea.Quit
	}
	m.tail = tail
	m.closeFn = closeFn
	return tea.Batch(m.spinner.Tick, m.waitForLine(), m.tick())
}

func (m *statusModel) tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *statusModel) waitForLine() tea.Cmd {
	return func() tea.Msg {
		select {
		case line, ok := <-m.tail.lines:
			if !ok {
				return nil
			}
			return logLineMsg(line)
		case err := <-m.tail.errs:
			return tailErrMsg{err}
		}
	}
}

func (m *statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.closeFn != nil {
				m.closeFn()
			}
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tickMsg:
		return m, m.tick()
	case logLineMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxLines {
			m.lines = m.lines[len(m.lines)-maxLines:]
		}
		return m, m.waitForLine()
	case tailErrMsg:
		m.tailErr = msg.err
		if m.closeFn != nil {
			m.closeFn()
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *statusModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("jasmin-lsp status"))
	b.WriteString(" ")
	b.WriteString(m.spinner.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.logPath))
	b.WriteString("\n\n")

	if m.tailErr != nil {
		b.WriteString(errorStyle.Render(m.tailErr.Error()))
		b.WriteString("\n")
	}

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q to quit"))
	return b.String()
}

// tailer streams newly appended lines from path, polling for growth the
// way `tail -f` does - the session log is append-only for the lifetime of
// the server process it belongs to.
type tailer struct {
	lines chan string
	errs  chan error
	done  chan struct{}
}

func newTailer(path string) (*tailer, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("statusui: opening %s: %w", path, err)
	}

	t := &tailer{
		lines: make(chan string, 64),
		errs:  make(chan error, 1),
		done:  make(chan struct{}),
	}

	go t.run(f)

	closeFn := func() {
		close(t.done)
		_ = f.Close()
	}
	return t, closeFn, nil
}

func (t *tailer) run(f *os.File) {
	reader := bufio.NewReader(f)
	for {
		select {
		case <-t.done:
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if line != "" {
				select {
				case t.lines <- strings.TrimRight(line, "\n"):
				case <-t.done:
					return
				}
			}
			time.Sleep(200 * time.Millisecond)
			continue
		}

		select {
		case t.lines <- strings.TrimRight(line, "\n"):
		case <-t.done:
			return
		}
	}
}
