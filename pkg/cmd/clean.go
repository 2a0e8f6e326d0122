package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/gitpick/pkg/patchcache"
)

// NewCleanCmd creates the "clean" command.
func NewCleanCmd(setup SetupFunc) *cobra.Command {
	var scratchDir string
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove patch files left behind by interrupted pick runs",
		Long: `A pick run keeps its scratch patches when a file could not be restored, so
they can be applied by hand. This removes the ones older than --older-than.`,
		Run: func(cmd *cobra.Command, args []string) {
			_, cancel, cfg, err := setup()
			if err != nil {
				log.Fatal().Err(err).Msg("Setup environment error for clean command")
				return
			}
			defer cancel()

			dir := scratchDir
			if dir == "" {
				dir = cfg.ScratchDir
			}
			if dir == "" {
				dir = patchcache.DefaultDir()
			}
			stats, err := patchcache.Sweep(dir, olderThan)
			if err != nil {
				log.Fatal().Err(err).Str("path", dir).Msg("Failed to clean patch directory")
			}
			fmt.Printf("Removed %s (%s) from %s\n",
				english.Plural(stats.Removed, "patch file", "patch files"),
				humanize.Bytes(uint64(stats.TotalBytes)),
				stats.Dir)
		},
	}
	cmd.Flags().StringVar(&scratchDir, "scratch-dir", "", "Patch directory to clean")
	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only remove files older than this")
	return cmd
}
