package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/gitpick/pkg/cmd"
	"github.com/renatogalera/gitpick/pkg/committypes"
	"github.com/renatogalera/gitpick/pkg/config"
	"github.com/renatogalera/gitpick/pkg/git"
)

var (
	debugFlag  bool
	configFlag string
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd := &cobra.Command{
		Use:   "gitpick",
		Short: "Stage, commit and release changes hunk by hunk",
		Long: `gitpick walks the hunks of your unstaged changes and stages only the ones
you accept, then helps you commit them with a conventional commit message
and tag releases from the commit history.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debugFlag {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (default ~/.config/gitpick/config.yaml)")

	rootCmd.AddCommand(
		cmd.NewPickCmd(setupEnvironment),
		cmd.NewCommitCmd(setupEnvironment),
		cmd.NewTagCmd(setupEnvironment),
		cmd.NewChangelogCmd(setupEnvironment),
		cmd.NewShowCmd(setupEnvironment),
		cmd.NewCleanCmd(setupEnvironment),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupEnvironment loads and validates the config, checks we are inside a
// repository and returns a context cancelled on interrupt.
func setupEnvironment() (context.Context, context.CancelFunc, *config.Config, error) {
	cfg, err := config.LoadOrCreateConfig(configFlag)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	committypes.SetTypes(cfg.TypeNames())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	if !git.CheckGitRepository(ctx) {
		cancel()
		return nil, nil, nil, errors.New("this is not a git repository")
	}
	log.Debug().Str("scratchDir", cfg.ScratchDir).Strs("lockFiles", cfg.LockFiles).Msg("Configuration loaded")
	return ctx, cancel, cfg, nil
}
