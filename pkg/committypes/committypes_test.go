package committypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		msg    string
		want   Header
		wantOK bool
	}{
		{msg: "feat: add picker", want: Header{Type: "feat", Subject: "add picker"}, wantOK: true},
		{msg: "fix(git)!: drop empty hunks", want: Header{Type: "fix", Scope: "git", Subject: "drop empty hunks", Breaking: true}, wantOK: true},
		{msg: "✨ feat(ui): hunk viewport", want: Header{Type: "feat", Scope: "ui", Subject: "hunk viewport"}, wantOK: true},
		{msg: ":bug: fix: crash", want: Header{Type: "fix", Subject: "crash"}, wantOK: true},
		{msg: "refactor: cache\n\nBREAKING CHANGE: New takes a dir", want: Header{Type: "refactor", Subject: "cache", Breaking: true}, wantOK: true},
		{msg: "Merge branch 'main'", want: Header{Subject: "Merge branch 'main'"}},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, ok := Parse(tt.msg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetTypes(t *testing.T) {
	t.Cleanup(func() { SetTypes(nil) })

	assert.True(t, IsValidCommitType("feat"))
	SetTypes([]string{"wip", "release"})
	assert.False(t, IsValidCommitType("feat"))
	assert.True(t, IsValidCommitType("wip"))
	assert.Equal(t, "wip|release", TypesRegexPattern())
	assert.True(t, BuildRegexPatternWithEmoji().MatchString("release(v2): cut"))

	SetTypes(nil)
	assert.Equal(t, defaultTypes, AllTypes())
}

func TestAddTypeAndEmoji(t *testing.T) {
	assert.Equal(t, "feat: add picker", AddType("add picker", "feat"))
	assert.Equal(t, "fix: already typed", AddType("fix: already typed", "feat"))
	assert.Equal(t, "plain", AddType(" plain ", ""))

	assert.Equal(t, "✨ feat: x", AddEmoji("feat: x", "✨"))
	assert.Equal(t, "✨ feat: x", AddEmoji("✨ feat: x", "✨"))
	assert.Equal(t, "feat: x", AddEmoji("feat: x", ""))
}

func TestGuessCommitType(t *testing.T) {
	assert.Equal(t, "feat", GuessCommitType("Add hunk picker"))
	assert.Equal(t, "fix", GuessCommitType("fix crash on empty diff"))
	assert.Equal(t, "", GuessCommitType("wording"))
}
