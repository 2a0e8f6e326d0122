package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/gitpick/pkg/changelog"
	"github.com/renatogalera/gitpick/pkg/git"
	"github.com/renatogalera/gitpick/pkg/versioner"
)

// NewChangelogCmd creates the "changelog" command.
func NewChangelogCmd(setup SetupFunc) *cobra.Command {
	var from, title, output string
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Print a markdown changelog of the commits since the last release",
		Run: func(cmd *cobra.Command, args []string) {
			_, cancel, _, err := setup()
			if err != nil {
				log.Fatal().Err(err).Msg("Setup environment error for changelog command")
				return
			}
			defer cancel()

			repo, err := git.OpenRepository(".")
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to open repository")
			}
			current, err := versioner.GetCurrentVersionTag(repo)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to get current version tag")
			}
			if from == "" {
				from = current
			}
			commits, err := git.CommitsSince(repo, from)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to list commits")
			}

			if title == "" {
				messages := make([]string, 0, len(commits))
				for _, c := range commits {
					messages = append(messages, c.Message)
				}
				title = versioner.NextVersion(current, versioner.SuggestBump(messages))
			}

			md := changelog.Build(title, time.Now(), commits).Markdown()
			if output == "" {
				fmt.Print(md)
				return
			}
			if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
				log.Fatal().Err(err).Str("path", output).Msg("Failed to write changelog")
			}
			log.Info().Str("path", output).Int("commits", len(commits)).Msg("Changelog written")
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start after this revision instead of the latest version tag")
	cmd.Flags().StringVar(&title, "title", "", "Release title (defaults to the suggested next version)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
