package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veldhuis/atelier/internal/lifecycle"
)

func newPromoteCmd() *cobra.Command {
	var (
		configPath string
		signedDate string
		create     bool
	)

	cmd := &cobra.Command{
		Use:   "promote <proposal-code>",
		Short: "Promote a won proposal to an active project",
		Long: `Promotes the proposal with the given code to an active project in a single
transaction: the proposal is archived, the project activated, and all
communication links copied across. Re-running on an archived proposal is a
no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			signed, err := parseDate(signedDate)
			if err != nil {
				return err
			}

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			res, err := lifecycle.Promote(gormDB, args[0], lifecycle.PromoteOpts{
				SignedDate: signed,
				AutoCreate: create,
			})
			if err != nil {
				return err
			}

			if res.AlreadyDone {
				fmt.Fprintf(out, "Proposal %s is already archived; nothing to do\n", args[0])
				return nil
			}
			if res.CreatedProject {
				fmt.Fprintf(out, "Created project %s\n", res.ProjectCode)
			}
			fmt.Fprintf(out, "Promoted proposal %s to active project %s\n", args[0], res.ProjectCode)
			fmt.Fprintf(out, "Copied %d communication link(s)\n", res.LinksCopied)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	cmd.Flags().StringVar(&signedDate, "signed-date", "", "contract-signed date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&create, "create-project", false, "create the project row when none matches the code")
	return cmd
}
