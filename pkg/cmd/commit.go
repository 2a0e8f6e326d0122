package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/gitpick/pkg/committypes"
	"github.com/renatogalera/gitpick/pkg/config"
	"github.com/renatogalera/gitpick/pkg/git"
	"github.com/renatogalera/gitpick/pkg/template"
	"github.com/renatogalera/gitpick/pkg/ui"
)

type commitOptions struct {
	message    string
	commitType string
	template   string
	emoji      bool
	edit       bool
}

// NewCommitCmd creates the "commit" command.
func NewCommitCmd(setup SetupFunc) *cobra.Command {
	opts := &commitOptions{}
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit the staged hunks with a conventional commit message",
		Long: `Commits the index. With -m the message is committed directly; otherwise an
editor opens where the message and commit type can be changed and the staged
diff reviewed before committing.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel, cfg, err := setup()
			if err != nil {
				log.Fatal().Err(err).Msg("Setup environment error for commit command")
				return
			}
			defer cancel()

			cm := config.NewConfigManager(cfg)
			cm.RegisterFlag("template", opts.template)
			if cmd.Flags().Changed("emoji") {
				cm.SetFlag("enableEmoji", opts.emoji)
			}
			if cfg, err = cm.MergeConfiguration(); err != nil {
				log.Fatal().Err(err).Msg("Invalid flags for commit command")
			}

			if err := runCommit(ctx, cfg, opts); err != nil {
				log.Fatal().Err(err).Msg("Failed to commit")
			}
		},
	}
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Commit message")
	cmd.Flags().StringVarP(&opts.commitType, "type", "t", "", "Commit type (e.g. feat, fix, docs)")
	cmd.Flags().StringVar(&opts.template, "template", "", `Commit message template (e.g. "{GIT_BRANCH}: {COMMIT_MESSAGE}")`)
	cmd.Flags().BoolVar(&opts.emoji, "emoji", false, "Prefix the message with the emoji of its commit type")
	cmd.Flags().BoolVarP(&opts.edit, "edit", "e", false, "Open the editor even when -m is given")
	return cmd
}

func runCommit(ctx context.Context, cfg *config.Config, opts *commitOptions) error {
	if opts.commitType != "" && !committypes.IsValidCommitType(opts.commitType) {
		return fmt.Errorf("invalid commit type %q, expected one of %s", opts.commitType, committypes.TypesRegexPattern())
	}
	staged, err := git.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if !staged {
		fmt.Println("No staged changes. Run 'gitpick pick' to stage hunks first.")
		return nil
	}

	author := git.Author{Name: cfg.AuthorName, Email: cfg.AuthorEmail}
	commitFn := func(ctx context.Context, message string) error {
		return git.CommitChanges(ctx, message, author)
	}

	if opts.message != "" && !opts.edit {
		emoji := ""
		if cfg.EnableEmoji {
			commitType := opts.commitType
			if commitType == "" {
				h, _ := committypes.Parse(opts.message)
				commitType = h.Type
			}
			emoji = cfg.Emojis()[commitType]
		}
		final, err := template.Compose(ctx, opts.message, opts.commitType, emoji, cfg.Template)
		if err != nil {
			return fmt.Errorf("failed to apply template: %w", err)
		}
		if err := commitFn(ctx, final); err != nil {
			return err
		}
		head, err := git.GetHeadCommitMessage(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Committed: %s\n", firstLine(head))
		return nil
	}

	diff := ""
	if repo, err := openRepo(); err == nil {
		diff, err = repo.Diff(ctx, git.DiffOptions{
			Cached:           true,
			ContextLines:     cfg.Diff.ContextLines,
			IgnoreAllSpace:   cfg.Diff.IgnoreAllSpace,
			IgnoreBlankLines: cfg.Diff.IgnoreBlankLines,
		})
		if err != nil {
			log.Debug().Err(err).Msg("Could not read staged diff")
		}
	}

	model := ui.NewUIModel(ui.Options{
		Message:     opts.message,
		CommitType:  opts.commitType,
		Template:    cfg.Template,
		Diff:        diff,
		EnableEmoji: cfg.EnableEmoji,
		Emojis:      cfg.Emojis(),
		Commit:      commitFn,
	})
	final, err := ui.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("commit editor error: %w", err)
	}
	if m, ok := final.(ui.Model); ok && !m.Committed() {
		fmt.Println("Nothing committed.")
	}
	return nil
}
