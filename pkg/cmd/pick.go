package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/gitpick/pkg/config"
	"github.com/renatogalera/gitpick/pkg/git"
	"github.com/renatogalera/gitpick/pkg/patchcache"
	"github.com/renatogalera/gitpick/pkg/selector"
	"github.com/renatogalera/gitpick/pkg/ui/splitter"
)

type pickOptions struct {
	contextLines int
	choose       bool
	scratchDir   string
}

// NewPickCmd creates the "pick" command.
func NewPickCmd(setup SetupFunc) *cobra.Command {
	opts := &pickOptions{}
	cmd := &cobra.Command{
		Use:   "pick [paths...]",
		Short: "Stage unstaged changes hunk by hunk",
		Long: `Walks every hunk of the unstaged changes and asks whether to stage it.
Accepted hunks are staged; rejected hunks stay in the working tree as
unstaged changes. Files matching the configured lock files are left out.

The diff is always the working tree against the index with every whitespace
change included, because each file is reverted to its index copy and rebuilt
from the hunks.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel, cfg, err := setup()
			if err != nil {
				log.Fatal().Err(err).Msg("Setup environment error for pick command")
				return
			}
			defer cancel()

			cm := config.NewConfigManager(cfg)
			cm.RegisterFlag("scratchDir", opts.scratchDir)
			if cmd.Flags().Changed("unified") {
				if err := checkContextLines(opts.contextLines); err != nil {
					log.Fatal().Err(err).Msg("Invalid flags for pick command")
				}
				cm.SetFlag("diff.contextLines", opts.contextLines)
			}
			if cfg, err = cm.MergeConfiguration(); err != nil {
				log.Fatal().Err(err).Msg("Invalid flags for pick command")
			}

			report, skipped, err := runPick(ctx, cfg, opts, args)
			if len(report.Files) > 0 || len(skipped) > 0 {
				fmt.Println(RenderReport(report, skipped))
			}
			if errors.Is(err, selector.ErrAborted) {
				log.Warn().Msg("Selection aborted; the current file was left untouched")
				return
			}
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to pick hunks")
			}
		},
	}
	cmd.Flags().IntVarP(&opts.contextLines, "unified", "U", 3, "Lines of context around each hunk (at least 1)")
	cmd.Flags().BoolVar(&opts.choose, "choose", false, "Pick the files to walk with a fuzzy finder")
	cmd.Flags().StringVar(&opts.scratchDir, "scratch-dir", "", "Directory for the temporary patch files")
	return cmd
}

func runPick(ctx context.Context, cfg *config.Config, opts *pickOptions, args []string) (selector.Report, []string, error) {
	repo, err := openRepo()
	if err != nil {
		return selector.Report{}, nil, err
	}
	paths, err := repoRelative(repo.Dir(), args)
	if err != nil {
		return selector.Report{}, nil, err
	}
	raw, err := repo.Diff(ctx, pickDiffOptions(cfg, paths))
	if err != nil {
		return selector.Report{}, nil, err
	}

	files, skipped := git.FilterLockFiles(git.ParseDiff(raw), cfg.LockFiles)
	files = withHunks(files)
	if len(files) == 0 {
		fmt.Println("No unstaged changes to pick from.")
		return selector.Report{}, skipped, nil
	}

	if opts.choose {
		files, err = chooseFiles(files)
		if err != nil {
			return selector.Report{}, skipped, err
		}
	}

	cache, err := patchcache.New(cfg.ScratchDir)
	if err != nil {
		return selector.Report{}, skipped, err
	}
	log.Debug().Str("dir", cache.Dir()).Int("files", len(files)).Msg("Starting hunk selection")

	report, err := selector.New(repo, splitter.NewPrompter(), cache).Run(ctx, files)
	return report, skipped, err
}

// checkContextLines rejects hunks without context: git apply cannot place a
// zero-context hunk once an earlier hunk of the file was left out.
func checkContextLines(n int) error {
	if n < 1 {
		return fmt.Errorf("pick needs at least one line of context, got -U%d", n)
	}
	return nil
}

// pickDiffOptions builds the diff the selection replays. It compares the
// working tree with the index, the copy RevertFile restores, and never hides
// whitespace changes: a change missing from the diff would be lost on revert.
func pickDiffOptions(cfg *config.Config, paths []string) git.DiffOptions {
	return git.DiffOptions{
		Paths:        paths,
		ContextLines: cfg.Diff.ContextLines,
	}
}

// withHunks drops files with nothing to ask about, such as binary changes or
// pure mode changes.
func withHunks(files []*git.FileDiff) []*git.FileDiff {
	var out []*git.FileDiff
	for _, fd := range files {
		if len(fd.Hunks) == 0 {
			log.Debug().Str("file", fd.FileName).Msg("No hunks, skipping")
			continue
		}
		out = append(out, fd)
	}
	return out
}

func chooseFiles(files []*git.FileDiff) ([]*git.FileDiff, error) {
	idxs, err := fuzzyfinder.FindMulti(
		files,
		func(i int) string {
			stats, _ := git.FileStats(files[i])
			return fmt.Sprintf("%s | %d hunks | %s", files[i].FileName, len(files[i].Hunks), stats)
		},
		fuzzyfinder.WithPromptString("Select files (tab to mark)> "),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, selector.ErrAborted
		}
		return nil, fmt.Errorf("fuzzyfinder error: %w", err)
	}
	chosen := make([]*git.FileDiff, 0, len(idxs))
	for _, i := range idxs {
		chosen = append(chosen, files[i])
	}
	return chosen, nil
}

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	stagedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	recoveredStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// RenderReport formats the outcome of a pick run.
func RenderReport(r selector.Report, skippedLockFiles []string) string {
	var sb strings.Builder
	sb.WriteString(reportTitleStyle.Render("Hunk selection") + "\n")
	for _, f := range r.Files {
		switch f.Outcome {
		case selector.OutcomeStaged:
			line := fmt.Sprintf("✔ %s  %d staged", f.FileName, f.Accepted)
			if f.Ignored > 0 {
				line += fmt.Sprintf(", %d left unstaged", f.Ignored)
			}
			sb.WriteString(stagedStyle.Render(line) + "\n")
		case selector.OutcomeRecovered:
			sb.WriteString(recoveredStyle.Render(fmt.Sprintf("⚠ %s  accepted hunks did not apply, original changes restored (%s)", f.FileName, f.Hash)) + "\n")
		default:
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("· %s  nothing staged", f.FileName)) + "\n")
		}
	}
	if len(skippedLockFiles) > 0 {
		sb.WriteString(mutedStyle.Render("Lock files left out: "+strings.Join(skippedLockFiles, ", ")) + "\n")
	}
	fmt.Fprintf(&sb, "%d staged, %d skipped, %d recovered",
		r.Count(selector.OutcomeStaged), r.Count(selector.OutcomeSkipped), r.Count(selector.OutcomeRecovered))
	return sb.String()
}
