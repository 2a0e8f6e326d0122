package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/gitpick/pkg/config"
	"github.com/renatogalera/gitpick/pkg/git"
	"github.com/renatogalera/gitpick/pkg/versioner"
)

type tagOptions struct {
	yes    bool
	push   bool
	remote string
	bump   string
}

// NewTagCmd creates the "tag" command.
func NewTagCmd(setup SetupFunc) *cobra.Command {
	opts := &tagOptions{}
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Tag HEAD with the next semantic version",
		Long: `Finds the latest semantic version tag, suggests the next version from the
conventional commits since then (breaking change: major, feat: minor,
anything else: patch) and tags HEAD with it.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel, cfg, err := setup()
			if err != nil {
				log.Fatal().Err(err).Msg("Setup environment error for tag command")
				return
			}
			defer cancel()

			cm := config.NewConfigManager(cfg)
			if cmd.Flags().Changed("push") {
				cm.SetFlag("tag.push", opts.push)
			}
			cm.RegisterFlag("tag.remote", opts.remote)
			if cfg, err = cm.MergeConfiguration(); err != nil {
				log.Fatal().Err(err).Msg("Invalid flags for tag command")
			}

			if err := runTag(ctx, cfg, opts); err != nil {
				log.Fatal().Err(err).Msg("Failed to tag release")
			}
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Use the suggested version without asking")
	cmd.Flags().BoolVar(&opts.push, "push", false, "Push the new tag")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "Remote to push the tag to")
	cmd.Flags().StringVar(&opts.bump, "bump", "", "Force the bump: major, minor or patch")
	return cmd
}

func parseBump(s string) (versioner.Bump, error) {
	switch s {
	case "major":
		return versioner.BumpMajor, nil
	case "minor":
		return versioner.BumpMinor, nil
	case "patch":
		return versioner.BumpPatch, nil
	}
	return versioner.BumpPatch, fmt.Errorf("unknown bump %q, expected major, minor or patch", s)
}

func runTag(ctx context.Context, cfg *config.Config, opts *tagOptions) error {
	repo, err := git.OpenRepository(".")
	if err != nil {
		return err
	}
	current, err := versioner.GetCurrentVersionTag(repo)
	if err != nil {
		return fmt.Errorf("failed to get current version tag: %w", err)
	}
	commits, err := git.CommitsSince(repo, current)
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		fmt.Printf("No commits since %s, nothing to tag.\n", current)
		return nil
	}

	messages := make([]string, 0, len(commits))
	for _, c := range commits {
		messages = append(messages, c.Message)
	}
	bump := versioner.SuggestBump(messages)
	if opts.bump != "" {
		if bump, err = parseBump(opts.bump); err != nil {
			return err
		}
	}
	log.Info().Str("current", current).Str("bump", bump.String()).Int("commits", len(commits)).Msg("Suggested release")

	next := versioner.NextVersion(current, bump)
	if !opts.yes {
		next, err = versioner.RunSemVerTUI(ctx, current, bump)
		if err != nil {
			return fmt.Errorf("version picker error: %w", err)
		}
		if next == "" {
			fmt.Println("No version selected.")
			return nil
		}
	}

	if err := versioner.CreateTag(repo, next); err != nil {
		return err
	}
	fmt.Printf("Tagged HEAD as %s\n", next)

	if cfg.Tag.Push {
		if err := versioner.PushTag(ctx, repo, cfg.Tag.Remote, next); err != nil {
			return err
		}
		fmt.Printf("Pushed %s to %s\n", next, cfg.Tag.Remote)
	}
	return nil
}
