package versioner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	suggestedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// semverChoice represents one line in the picker: the bump and the resulting
// version string.
type semverChoice struct {
	bump   Bump
	detail string
}

// semverModel is the Bubble Tea model for picking a new semver.
type semverModel struct {
	choices       []semverChoice
	cursor        int
	suggested     Bump
	selected      bool
	selectedValue string
	currentVer    string
}

// NewSemverModel computes the major/minor/patch candidates and puts the
// cursor on the suggested one.
func NewSemverModel(currentVersion string, suggested Bump) semverModel {
	m := semverModel{
		choices: []semverChoice{
			{bump: BumpMajor, detail: NextVersion(currentVersion, BumpMajor)},
			{bump: BumpMinor, detail: NextVersion(currentVersion, BumpMinor)},
			{bump: BumpPatch, detail: NextVersion(currentVersion, BumpPatch)},
		},
		suggested:  suggested,
		currentVer: currentVersion,
	}
	for i, c := range m.choices {
		if c.bump == suggested {
			m.cursor = i
		}
	}
	return m
}

func (m semverModel) Init() tea.Cmd {
	return nil
}

func (m semverModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = true
			m.selectedValue = m.choices[m.cursor].detail
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m semverModel) View() string {
	if m.selected {
		return fmt.Sprintf("Selected %s\n", m.selectedValue)
	}

	current := m.currentVer
	if current == "" {
		current = "none"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Current version: %s\n\n", current)
	sb.WriteString("Select the next version (↑/↓, enter, or q to quit):\n\n")
	for i, choice := range m.choices {
		line := fmt.Sprintf("  %-5s => %s", choice.bump, choice.detail)
		if i == m.cursor {
			line = cursorStyle.Render("> " + line[2:])
		}
		if choice.bump == m.suggested {
			line += suggestedStyle.Render("  (suggested)")
		}
		sb.WriteString(line + "\n")
	}
	return sb.String() + "\n"
}

// RunSemVerTUI runs the picker and returns the chosen version, or "" if the
// operator quit.
func RunSemVerTUI(ctx context.Context, currentVersion string, suggested Bump, opts ...tea.ProgramOption) (string, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	finalModel, err := tea.NewProgram(NewSemverModel(currentVersion, suggested), opts...).Run()
	if err != nil {
		return "", err
	}

	m, ok := finalModel.(semverModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type")
	}
	if !m.selected {
		return "", nil
	}
	return m.selectedValue, nil
}

// parseVersionTriplet splits "0.7.3" (no leading v, prerelease ignored) into
// its numbers.
func parseVersionTriplet(ver string) (int, int, int) {
	ver, _, _ = strings.Cut(ver, "-")
	parts := strings.Split(ver, ".")
	if len(parts) < 3 {
		return 0, 0, 0
	}
	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, 0, 0
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2]
}
