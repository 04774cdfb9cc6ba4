package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veldhuis/atelier/internal/ingest"
)

func newIngestCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ingest <export.json>",
		Short: "Import communications from a mail-export file",
		Long: `Imports communication records from a JSON export produced by the mail
fetcher. Records already ingested (same message id) are skipped; malformed
records are reported but never abort the rest of the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			summary, err := ingest.ImportFile(gormDB, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Processed %d record(s): %d imported, %d skipped, %d failed\n",
				summary.Processed, summary.Imported, summary.Skipped, summary.Failed)
			for _, e := range summary.Errors {
				fmt.Fprintf(out, "  record %d (%s): %v\n", e.Index, e.MessageID, e.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	return cmd
}
