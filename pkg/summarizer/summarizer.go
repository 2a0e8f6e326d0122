package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	gogit "github.com/go-git/go-git/v5"
	gogitobj "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/renatogalera/gitpick/pkg/git"
)

// FileSummary is the per-file part of a commit summary.
type FileSummary struct {
	Name  string
	Hunks int
	Stats git.Stats
}

// Summary describes what a commit changed, hunk by hunk.
type Summary struct {
	ShortHash string
	Author    string
	When      time.Time
	Subject   string
	Files     []FileSummary
	Total     git.Stats
}

// PickCommit lists the commits reachable from HEAD in a fuzzy finder and
// returns the selected one.
func PickCommit(repo *gogit.Repository) (*gogitobj.Commit, error) {
	commits, err := git.ListCommits(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("no commits found in this repository")
	}

	idx, err := fuzzyfinder.Find(
		commits,
		func(i int) string {
			commit := commits[i]
			return fmt.Sprintf("%s | %s | %s", commit.Hash.String()[:7], firstLine(commit.Message), humanize.Time(commit.Author.When))
		},
		fuzzyfinder.WithPromptString("Select a commit> "),
	)
	if err != nil {
		return nil, fmt.Errorf("fuzzyfinder error: %w", err)
	}
	return commits[idx], nil
}

// Summarize parses the patch commit introduced and counts its hunks and lines
// per file.
func Summarize(commit *gogitobj.Commit) (Summary, error) {
	s := Summary{
		ShortHash: commit.Hash.String()[:7],
		Author:    commit.Author.Name,
		When:      commit.Author.When,
		Subject:   firstLine(commit.Message),
	}
	patch, err := git.CommitPatch(commit)
	if err != nil {
		return s, fmt.Errorf("failed to get commit diff: %w", err)
	}
	for _, fd := range git.ParseDiff(patch) {
		stats, err := git.FileStats(fd)
		if err != nil {
			return s, fmt.Errorf("failed to count lines of %s: %w", fd.FileName, err)
		}
		s.Files = append(s.Files, FileSummary{Name: fd.FileName, Hunks: len(fd.Hunks), Stats: stats})
		s.Total.Added += stats.Added
		s.Total.Deleted += stats.Deleted
	}
	return s, nil
}

// Render formats a summary for the terminal.
func Render(s Summary) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("63")).
		Underline(true).
		MarginBottom(1)
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		PaddingLeft(2)
	addedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	deletedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(s.Subject) + "\n")
	info := fmt.Sprintf("Short Hash: %s\nAuthor: %s\nDate: %s (%s)",
		s.ShortHash,
		s.Author,
		s.When.Format("Mon Jan 2 15:04:05 MST 2006"),
		humanize.Time(s.When))
	sb.WriteString(infoStyle.Render(info) + "\n\n")

	if len(s.Files) == 0 {
		sb.WriteString("No diff found for this commit (maybe an empty or merge commit).\n")
	}
	for _, f := range s.Files {
		fmt.Fprintf(&sb, "  %s  %s %s  %s\n",
			f.Name,
			addedStyle.Render(fmt.Sprintf("+%d", f.Stats.Added)),
			deletedStyle.Render(fmt.Sprintf("-%d", f.Stats.Deleted)),
			english.Plural(f.Hunks, "hunk", "hunks"),
		)
	}
	fmt.Fprintf(&sb, "\n  %s changed, %s\n",
		english.Plural(len(s.Files), "file", "files"), s.Total)
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	return sb.String()
}

// firstLine returns the first line of a message.
func firstLine(msg string) string {
	lines := strings.Split(msg, "\n")
	return strings.TrimSpace(lines[0])
}
