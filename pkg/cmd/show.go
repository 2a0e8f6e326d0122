package cmd

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gogitobj "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/gitpick/pkg/git"
	"github.com/renatogalera/gitpick/pkg/summarizer"
)

// NewShowCmd creates the "show" command.
func NewShowCmd(setup SetupFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [revision]",
		Short: "Show the hunks and line counts of a commit",
		Long: `Without a revision, lists the commits in a fuzzy finder; the selected
commit's diff is split into files and hunks and summarized.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			_, cancel, _, err := setup()
			if err != nil {
				log.Fatal().Err(err).Msg("Setup environment error for show command")
				return
			}
			defer cancel()

			repo, err := git.OpenRepository(".")
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to open repository")
			}
			commit, err := resolveCommit(repo, args)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to select commit")
			}
			s, err := summarizer.Summarize(commit)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to summarize commit")
			}
			fmt.Println(summarizer.Render(s))
		},
	}
	return cmd
}

func resolveCommit(repo *gogit.Repository, args []string) (*gogitobj.Commit, error) {
	if len(args) == 0 {
		return summarizer.PickCommit(repo)
	}
	h, err := repo.ResolveRevision(plumbing.Revision(args[0]))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	c, err := repo.CommitObject(*h)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", args[0], err)
	}
	return c, nil
}
