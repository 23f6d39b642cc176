// Package ui renders a release run as a live step list in the terminal.
package ui

import (
	"context"
	"strings"

	"github.com/VIISON/scs-commander/pkg/release"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	abortedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// StepMsg reports that a pipeline step started.
type StepMsg release.Step

// DoneMsg ends the program. Err is nil on success.
type DoneMsg struct {
	Result *release.Result
	Err    error
}

// Model shows the steps of one release run: finished steps get a check mark,
// the active one a spinner, a failed one a cross. Ctrl+C cancels the
// pipeline's context and waits for it to wind down.
type Model struct {
	title    string
	spinner  spinner.Model
	steps    []release.Step
	active   int
	done     bool
	failed   bool
	aborting bool
	cancel   context.CancelFunc

	Result *release.Result
	Err    error
}

func NewModel(title string, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	return Model{
		title:   title,
		spinner: sp,
		active:  -1,
		cancel:  cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.aborting = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case StepMsg:
		m.steps = append(m.steps, release.Step(msg))
		m.active = len(m.steps) - 1
		return m, nil

	case DoneMsg:
		m.Result = msg.Result
		m.Err = msg.Err
		m.done = true
		m.failed = msg.Err != nil
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for i, s := range m.steps {
		switch {
		case m.failed && i == m.active:
			b.WriteString(failStyle.Render("✖") + " " + s.String())
		case i == m.active && !m.done:
			b.WriteString(m.spinner.View() + " " + s.String())
		default:
			b.WriteString(doneStyle.Render("✔") + " " + s.String())
		}
		b.WriteString("\n")
	}

	if m.aborting && !m.done {
		b.WriteString(abortedStyle.Render("\naborting, waiting for the current step...\n"))
	}

	return b.String()
}

// RunRelease renders the pipeline while run executes it. run receives the
// step callback to install as release.Options.OnStep and is executed on its
// own goroutine; its outcome is handed back once the view has settled.
func RunRelease(title string, cancel context.CancelFunc, run func(onStep func(release.Step)) (*release.Result, error)) (*release.Result, error) {
	p := tea.NewProgram(NewModel(title, cancel))

	go func() {
		result, err := run(func(s release.Step) {
			p.Send(StepMsg(s))
		})
		p.Send(DoneMsg{Result: result, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := final.(Model)
	return m.Result, m.Err
}
