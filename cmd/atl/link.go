package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veldhuis/atelier/internal/linker"
)

func newLinkCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Run the batch linker over unlinked communications",
		Long: `Matches unlinked communications against known project and proposal codes
and learned sender/domain patterns, writing confidence-scored links. Safe to
re-run; manually confirmed links are never competed with.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			summary, err := linker.LinkBatch(gormDB, cfg, linker.BatchOpts{Limit: limit})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Processed %d communication(s): %d linked, %d skipped, %d failed\n",
				summary.Processed, summary.Linked, summary.Skipped, summary.Failed)
			for _, e := range summary.Errors {
				fmt.Fprintf(out, "  %s: %v\n", e.MessageID, e.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	cmd.Flags().IntVar(&limit, "limit", 0, "max communications to process (default from config)")
	return cmd
}
