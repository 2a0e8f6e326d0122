package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/renatogalera/gitpick/pkg/committypes"
	"github.com/renatogalera/gitpick/pkg/template"
)

// uiState represents the different states of the TUI.
type uiState int

const (
	stateShowCommit uiState = iota
	stateCommitting
	stateResult
	stateSelectType
	stateEditing
	stateShowDiff
)

type (
	commitResultMsg struct {
		message string
		err     error
	}
	autoQuitMsg struct{}
)

var (
	logoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	logoText = `GITPICK`

	// Where the commit message is shown
	commitBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Margin(1, 1)

	infoLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Margin(0, 1).
			Italic(true)

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	diffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Padding(1, 2).
			Margin(1, 1)
)

type keys struct {
	Commit     key.Binding
	Edit       key.Binding
	TypeSelect key.Binding
	Quit       key.Binding
	ViewDiff   key.Binding
	Help       key.Binding
	Enter      key.Binding
}

var keyMap = keys{
	Commit: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "commit"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit message"),
	),
	TypeSelect: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "change type"),
	),
	ViewDiff: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "view staged diff"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "commit"),
	),
}

// CommitFunc records the final message as a commit.
type CommitFunc func(ctx context.Context, message string) error

// Options configures the commit editor.
type Options struct {
	Message     string
	CommitType  string
	Template    string
	Diff        string
	EnableEmoji bool
	// Emojis maps commit types to the emoji prepended when EnableEmoji is set.
	Emojis map[string]string
	Commit CommitFunc
}

type Model struct {
	opts       Options
	state      uiState
	commitMsg  string
	commitType string
	result     string
	committed  bool
	spinner    spinner.Model

	selectedIndex int
	commitTypes   []string

	textarea textarea.Model
	help     help.Model

	// last error message to display prominently
	errMsg string

	// Terminal dimensions
	width  int
	height int
}

// NewUIModel creates the commit editor. Without an initial message it opens
// straight into editing.
func NewUIModel(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	ta := textarea.New()
	ta.Placeholder = "Write your commit message here..."
	ta.Prompt = "> "
	// Initial dimensions will be set by WindowSizeMsg
	ta.SetWidth(80)
	ta.SetHeight(10)
	ta.ShowLineNumbers = false

	commitType := opts.CommitType
	if commitType == "" {
		commitType = committypes.GuessCommitType(opts.Message)
	}

	m := Model{
		opts:        opts,
		state:       stateShowCommit,
		commitMsg:   strings.TrimSpace(opts.Message),
		commitType:  commitType,
		spinner:     s,
		commitTypes: committypes.AllTypes(),
		textarea:    ta,
		help:        help.New(),
		width:       80,
		height:      24,
	}
	if m.commitMsg == "" {
		m.state = stateEditing
		m.textarea.Focus()
	}
	return m
}

// NewProgram creates a new Bubble Tea program with the given model.
func NewProgram(m Model, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
}

// Init is the Bubble Tea initialization command.
func (m Model) Init() tea.Cmd {
	if m.state == stateEditing {
		return textarea.Blink
	}
	return nil
}

// --- UPDATE ------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		textareaWidth := min(m.width-4, 80)
		textareaHeight := min(m.height-10, 20)
		m.textarea.SetWidth(textareaWidth)
		m.textarea.SetHeight(max(textareaHeight, 3))
		return m, nil

	case tea.KeyMsg:
		// Editing owns the keyboard apart from save and cancel.
		if m.state == stateEditing {
			switch msg.String() {
			case "ctrl+s":
				m.commitMsg = strings.TrimSpace(m.textarea.Value())
				m.textarea.Blur()
				m.state = stateShowCommit
				if m.commitType == "" {
					m.commitType = committypes.GuessCommitType(m.commitMsg)
				}
				return m, nil
			case "esc":
				m.textarea.Blur()
				m.state = stateShowCommit
				return m, nil
			}
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}

		if m.state == stateSelectType {
			switch msg.String() {
			case "up", "k":
				if m.selectedIndex > 0 {
					m.selectedIndex--
				}
			case "down", "j":
				if m.selectedIndex < len(m.commitTypes)-1 {
					m.selectedIndex++
				}
			case "enter":
				m.commitType = m.commitTypes[m.selectedIndex]
				m.state = stateShowCommit
			case "esc", "q":
				m.state = stateShowCommit
			}
			return m, nil
		}

		if m.state == stateShowDiff {
			if key.Matches(msg, keyMap.Quit) {
				m.state = stateShowCommit
			}
			return m, nil
		}

		if key.Matches(msg, keyMap.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, keyMap.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		if m.state == stateShowCommit {
			switch {
			case key.Matches(msg, keyMap.Commit, keyMap.Enter):
				if m.commitMsg == "" {
					m.errMsg = "Commit message is empty."
					return m, nil
				}
				m.state = stateCommitting
				m.errMsg = ""
				m.spinner = spinner.New()
				m.spinner.Spinner = spinner.Dot
				return m, tea.Batch(m.spinner.Tick, m.commitCmd())
			case key.Matches(msg, keyMap.TypeSelect):
				m.state = stateSelectType
				m.errMsg = ""
				for i, ct := range m.commitTypes {
					if ct == m.commitType {
						m.selectedIndex = i
					}
				}
				return m, nil
			case key.Matches(msg, keyMap.Edit):
				m.state = stateEditing
				m.errMsg = ""
				m.textarea.SetValue(m.commitMsg)
				m.textarea.Focus()
				return m, textarea.Blink
			case key.Matches(msg, keyMap.ViewDiff):
				m.state = stateShowDiff
				m.errMsg = ""
				return m, nil
			}
		}

	case commitResultMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Commit failed: %v", msg.err)
			m.state = stateShowCommit
			return m, nil
		}
		m.committed = true
		m.result = "Commit created successfully!\n\n" + msg.message
		m.state = stateResult
		return m, autoQuitCmd()

	case autoQuitMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		if m.state == stateCommitting {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// --- VIEWS -------------------------------------------------------------------

func (m Model) View() string {
	switch m.state {
	case stateShowCommit:
		return m.viewShowCommit()
	case stateCommitting:
		return m.viewCommitting()
	case stateResult:
		return m.viewResult()
	case stateSelectType:
		return m.viewSelectType()
	case stateEditing:
		return m.viewEditing("Editing commit message (Ctrl+S to save, ESC to cancel):")
	case stateShowDiff:
		return m.viewDiff()
	default:
		return "Unknown state."
	}
}

func (m Model) viewShowCommit() string {
	header := logoStyle.Render(logoText)

	commitType := m.commitType
	if commitType == "" {
		commitType = "none"
	}
	infoText := fmt.Sprintf("Type: %s | Emoji: %t", commitType, m.opts.EnableEmoji)
	if m.opts.Template != "" {
		infoText += " | Template: on"
	}
	infoLine := infoLineStyle.Render(infoText)

	boxWidth := min(m.width-4, 100)
	errSection := ""
	if strings.TrimSpace(m.errMsg) != "" {
		errSection = errorBoxStyle.Width(boxWidth).Render(m.errMsg)
	}

	preview := committypes.AddType(m.commitMsg, m.commitType)
	if m.opts.EnableEmoji {
		preview = committypes.AddEmoji(preview, m.opts.Emojis[m.commitType])
	}
	content := commitBoxStyle.Width(boxWidth).Render(preview)

	builder := strings.Builder{}
	builder.WriteString(header + "\n\n")
	builder.WriteString(infoLine + "\n")
	if errSection != "" {
		builder.WriteString(errSection + "\n")
	}
	builder.WriteString(content + "\n")
	builder.WriteString(m.help.View(m) + "\n")
	return builder.String()
}

func (m Model) viewCommitting() string {
	header := logoStyle.Render(logoText)
	body := fmt.Sprintf("Committing...\n\n%s", m.spinner.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) viewResult() string {
	header := logoStyle.Render(logoText)
	body := lipgloss.NewStyle().Margin(1, 2).Render(m.result)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) viewSelectType() string {
	header := logoStyle.Render(logoText)
	var b strings.Builder
	b.WriteString("Select commit type:\n\n")
	for i, ct := range m.commitTypes {
		cursor := " "
		if i == m.selectedIndex {
			cursor = highlightStyle.Render(">")
		}
		label := ct
		if emoji := m.opts.Emojis[ct]; m.opts.EnableEmoji && emoji != "" {
			label = emoji + " " + ct
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, label))
	}
	b.WriteString("\nUse up/down (or j/k) to navigate, enter to select, 'q' to cancel.\n")
	return lipgloss.JoinVertical(lipgloss.Left, header, b.String())
}

func (m Model) viewEditing(title string) string {
	header := logoStyle.Render(logoText)
	body := lipgloss.NewStyle().Margin(1, 2).Render(
		fmt.Sprintf("%s\n\n%s", title, m.textarea.View()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) viewDiff() string {
	header := logoStyle.Render(logoText)
	diffText := m.opts.Diff
	if strings.TrimSpace(diffText) == "" {
		diffText = "(no staged changes)"
	}
	body := lipgloss.NewStyle().Margin(1, 2).Render(
		fmt.Sprintf("Staged diff:\n\n%s\n\nPress ESC/q to return.", diffStyle.Render(diffText)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// --- COMMANDS ----------------------------------------------------------------

// commitCmd composes the final message and commits it with a timeout.
func (m Model) commitCmd() tea.Cmd {
	message, commitType := m.commitMsg, m.commitType
	opts := m.opts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		emoji := ""
		if opts.EnableEmoji {
			emoji = opts.Emojis[commitType]
		}
		final, err := template.Compose(ctx, message, commitType, emoji, opts.Template)
		if err != nil {
			return commitResultMsg{err: fmt.Errorf("failed to apply template: %w", err)}
		}
		log.Debug().Str("message", final).Msg("Committing")
		if opts.Commit == nil {
			return commitResultMsg{err: fmt.Errorf("no commit function configured")}
		}
		return commitResultMsg{message: final, err: opts.Commit(ctx, final)}
	}
}

func autoQuitCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(_ time.Time) tea.Msg {
		return autoQuitMsg{}
	})
}

// ShortHelp and FullHelp make Model a help.KeyMap.
func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{
		keyMap.Commit,
		keyMap.Edit,
		keyMap.TypeSelect,
		keyMap.ViewDiff,
		keyMap.Help,
		keyMap.Quit,
	}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		m.ShortHelp(),
		{keyMap.Enter},
	}
}

// GetCommitMsg returns the commit message stored in the UI model.
func (m Model) GetCommitMsg() string {
	return m.commitMsg
}

// Committed reports whether the commit was created.
func (m Model) Committed() bool {
	return m.committed
}
