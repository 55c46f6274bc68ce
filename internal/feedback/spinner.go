package feedback

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type waitDoneMsg struct {
	err error
}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	wait    tea.Cmd
	err     error
	done    bool
}

func newSpinnerModel(label string, wait tea.Cmd) spinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("42"))),
	)
	return spinnerModel{spinner: s, label: label, wait: wait}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case waitDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// Spin shows label with an animated spinner on out until wait returns.
// It never reads from the terminal, so the console prompt keeps stdin.
func Spin(ctx context.Context, out io.Writer, label string, wait func(context.Context) error) error {
	waitCmd := func() tea.Msg {
		return waitDoneMsg{err: wait(ctx)}
	}

	p := tea.NewProgram(
		newSpinnerModel(label, waitCmd),
		tea.WithInput(nil),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(spinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", final)
	}
	return m.err
}
