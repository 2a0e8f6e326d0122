package splitter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renatogalera/gitpick/pkg/git"
	"github.com/renatogalera/gitpick/pkg/selector"
)

var prompt = selector.HunkPrompt{
	FileName: "pkg/server.go",
	Index:    1,
	Total:    3,
	Hunk:     "@@ -4,3 +4,3 @@\n import (\n-\t\"fmt\"\n+\t\"errors\"\n )\n",
	Stats:    git.Stats{Added: 1, Deleted: 1},
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Decisions(t *testing.T) {
	tests := []struct {
		name        string
		msg         tea.KeyMsg
		wantAccept  bool
		wantAborted bool
	}{
		{name: "accept", msg: runes("y"), wantAccept: true},
		{name: "reject", msg: runes("n")},
		{name: "quit", msg: runes("q"), wantAborted: true},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}, wantAborted: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, cmd := NewModel(prompt).Update(tt.msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())

			accept, aborted := next.(Model).Decision()
			assert.Equal(t, tt.wantAccept, accept)
			assert.Equal(t, tt.wantAborted, aborted)
		})
	}
}

func TestModel_EscapeDoesNotAbort(t *testing.T) {
	next, _ := NewModel(prompt).Update(tea.KeyMsg{Type: tea.KeyEsc})
	m := next.(Model)
	assert.False(t, m.aborted)
	assert.False(t, m.decided)
	assert.NotEmpty(t, m.View(), "prompt stays on screen")
}

func TestModel_UndecidedCountsAsAbort(t *testing.T) {
	_, aborted := NewModel(prompt).Decision()
	assert.True(t, aborted)
}

func TestModel_HelpToggleAndResize(t *testing.T) {
	m := NewModel(prompt)
	next, _ := m.Update(runes("?"))
	m = next.(Model)
	assert.True(t, m.help.ShowAll)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.viewport.Width)
	assert.Equal(t, 40-chrome, m.viewport.Height)

	_, aborted := m.Decision()
	assert.True(t, aborted, "help and resize do not decide")
}

func TestModel_View(t *testing.T) {
	view := NewModel(prompt).View()
	assert.Contains(t, view, "pkg/server.go")
	assert.Contains(t, view, "hunk 2/3")
	assert.Contains(t, view, "+1 -1")
	assert.Contains(t, view, "errors")

	next, _ := NewModel(prompt).Update(runes("y"))
	assert.Empty(t, next.View())
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr error
	}{
		{input: "y", want: true},
		{input: "n", want: false},
		{input: "q", wantErr: selector.ErrAborted},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(tea.WithInput(strings.NewReader(tt.input)), tea.WithOutput(&out))
			got, err := p.Confirm(context.Background(), prompt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPairSegments(t *testing.T) {
	oldSegs, newSegs := pairSegments("return fmt.Errorf(msg)", "return errors.New(msg)")

	var changedOld, changedNew, equal strings.Builder
	for _, s := range oldSegs {
		if s.Changed {
			changedOld.WriteString(s.Text)
		} else {
			equal.WriteString(s.Text)
		}
	}
	for _, s := range newSegs {
		if s.Changed {
			changedNew.WriteString(s.Text)
		}
	}
	assert.True(t, strings.HasPrefix(equal.String(), "return "))
	assert.True(t, strings.HasSuffix(equal.String(), "(msg)"))
	assert.NotEmpty(t, changedOld.String())
	assert.NotEmpty(t, changedNew.String())
}

func TestPairSegments_Identical(t *testing.T) {
	oldSegs, newSegs := pairSegments("same", "same")
	assert.Equal(t, []segment{{Text: "same"}}, oldSegs)
	assert.Equal(t, []segment{{Text: "same"}}, newSegs)
}

func TestRenderHunk_KeepsEveryLine(t *testing.T) {
	hunk := "@@ -1,4 +1,3 @@\n ctx\n-a\n-b\n+c\n"
	out := renderHunk(hunk)
	assert.Len(t, strings.Split(out, "\n"), 5)
	for _, want := range []string{"@@ -1,4 +1,3 @@", "ctx", "-a", "-b", "+c"} {
		assert.Contains(t, out, want)
	}
}
