package splitter

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/renatogalera/gitpick/pkg/selector"
)

// chrome is the number of lines taken by the title and the help bar.
const chrome = 4

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type keyMap struct {
	Accept key.Binding
	Reject key.Binding
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
	Page   key.Binding
	Help   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Reject, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Accept, k.Reject, k.Quit},
		{k.Up, k.Down, k.Page, k.Help},
	}
}

var keys = keyMap{
	Accept: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "stage hunk")),
	Reject: key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "leave unstaged")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "abort")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Page:   key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "page")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
}

// Model shows one hunk and waits for a decision.
type Model struct {
	prompt   selector.HunkPrompt
	viewport viewport.Model
	help     help.Model

	decided bool
	accept  bool
	aborted bool
}

// NewModel builds the model for a single hunk.
func NewModel(p selector.HunkPrompt) Model {
	vp := viewport.New(80, 20)
	vp.SetContent(renderHunk(p.Hunk))
	return Model{
		prompt:   p,
		viewport: vp,
		help:     help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 3)
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Accept):
			m.decided, m.accept = true, true
			return m, tea.Quit
		case key.Matches(msg, keys.Reject):
			m.decided, m.accept = true, false
			return m, tea.Quit
		case key.Matches(msg, keys.Quit):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.decided || m.aborted {
		return ""
	}
	title := fmt.Sprintf("%s  %s",
		titleStyle.Render(m.prompt.FileName),
		countStyle.Render(fmt.Sprintf("hunk %d/%d  %s", m.prompt.Index+1, m.prompt.Total, m.prompt.Stats)),
	)
	return fmt.Sprintf("%s\n\n%s\n%s", title, m.viewport.View(), m.help.View(keys))
}

// Decision reports the answer once the program has exited.
func (m Model) Decision() (accept, aborted bool) {
	return m.accept, m.aborted || !m.decided
}

// Prompter asks about each hunk with a short-lived bubbletea program.
type Prompter struct {
	opts []tea.ProgramOption
}

// NewPrompter returns a Prompter; opts are passed to every program, which is
// how tests and callers redirect input and output.
func NewPrompter(opts ...tea.ProgramOption) *Prompter {
	return &Prompter{opts: opts}
}

// Confirm implements selector.Prompter.
func (p *Prompter) Confirm(ctx context.Context, hp selector.HunkPrompt) (bool, error) {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, p.opts...)
	final, err := tea.NewProgram(NewModel(hp), opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("%w: %w", selector.ErrAborted, ctxErr)
		}
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return false, selector.ErrAborted
		}
		return false, fmt.Errorf("failed to run hunk prompt: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("unexpected model type %T", final)
	}
	accept, aborted := m.Decision()
	if aborted {
		return false, selector.ErrAborted
	}
	return accept, nil
}
