package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ace0731/Image-Converter/internal/entity"
)

const (
	maxLogLines = 12
	padding     = 2
	maxBarWidth = 80
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type resultMsg entity.ConversionResult

type progressMsg entity.BatchProgress

type doneMsg struct {
	batch *entity.Batch
	err   error
}

type tui struct {
	in  io.Reader
	out io.Writer
}

func NewTUI(in io.Reader, out io.Writer) Backend {
	return &tui{in: in, out: out}
}

func (t *tui) Interactive() bool { return true }

// Run converts in a goroutine while Bubble Tea owns the terminal. Quitting
// the UI cancels the batch; the current file is finished first.
func (t *tui) Run(ctx context.Context, total int, convert ConvertFunc) (*entity.Batch, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(total, cancel)
	program := tea.NewProgram(m, tea.WithInput(t.in), tea.WithOutput(t.out))

	done := make(chan doneMsg, 1)
	go func() {
		batch, err := convert(ctx, &programSink{program: program})
		msg := doneMsg{batch: batch, err: err}
		done <- msg
		program.Send(msg)
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("run progress ui: %w", err)
	}

	result := <-done
	if result.err == nil {
		summary(t.out, result.batch)
	}
	return result.batch, result.err
}

type programSink struct {
	program *tea.Program
}

func (s *programSink) OnResult(res entity.ConversionResult) {
	s.program.Send(resultMsg(res))
}

func (s *programSink) OnProgress(p entity.BatchProgress) {
	s.program.Send(progressMsg(p))
}

type model struct {
	bar       progress.Model
	total     int
	completed int
	lines     []string
	stopping  bool
	done      bool
	cancel    context.CancelFunc
}

func newModel(total int, cancel context.CancelFunc) model {
	return model{
		bar:    progress.New(progress.WithDefaultGradient()),
		total:  total,
		cancel: cancel,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.stopping {
				m.stopping = true
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(msg.Width-padding*2, maxBarWidth))
		return m, nil

	case resultMsg:
		res := entity.ConversionResult(msg)
		line := okStyle.Render("✔ " + res.String())
		if !res.OK() {
			line = errStyle.Render("✖ " + res.String())
		}
		m.lines = append(m.lines, line)
		if len(m.lines) > maxLogLines {
			m.lines = m.lines[len(m.lines)-maxLogLines:]
		}
		return m, nil

	case progressMsg:
		m.completed = msg.Completed
		m.total = msg.Total
		return m, nil

	case doneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m model) percent() float64 {
	return entity.BatchProgress{Completed: m.completed, Total: m.total}.Fraction()
}

func (m model) View() string {
	pad := strings.Repeat(" ", padding)

	var b strings.Builder
	b.WriteString("\n" + pad + titleStyle.Render("Image Resizer & Converter") + "\n\n")
	b.WriteString(pad + m.bar.ViewAs(m.percent()) + "\n")
	b.WriteString(pad + fmt.Sprintf("%d / %d files", m.completed, m.total) + "\n\n")

	for _, line := range m.lines {
		b.WriteString(pad + line + "\n")
	}

	switch {
	case m.done:
		b.WriteString("\n" + pad + "--- Conversion Finished ---\n")
	case m.stopping:
		b.WriteString("\n" + pad + helpStyle.Render("Stopping after the current file...") + "\n")
	default:
		b.WriteString("\n" + pad + helpStyle.Render("q: stop") + "\n")
	}
	return b.String()
}
