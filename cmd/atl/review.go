package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/veldhuis/atelier/internal/dashboard"
	"github.com/veldhuis/atelier/internal/linker"
	"github.com/veldhuis/atelier/internal/models"
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manual review of unlinked communications",
	}

	cmd.AddCommand(newReviewListCmd())
	cmd.AddCommand(newReviewAssignCmd())
	return cmd
}

func newReviewListCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List communications awaiting review",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			rows, err := dashboard.ReviewQueue(gormDB, limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "Review queue is empty")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSENT\tSENDER\tSUBJECT")
			for _, r := range rows {
				subject := r.Subject
				if subject == "" {
					subject = r.Filename
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.SentAt.Format("2006-01-02"), r.Sender, subject)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	cmd.Flags().IntVar(&limit, "limit", 50, "max rows to show")
	return cmd
}

func newReviewAssignCmd() *cobra.Command {
	var (
		configPath string
		commID     uint
		proposalID uint
		projectID  uint
		confirm    bool
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Manually link a communication to a proposal or project",
		Long: `Creates a manual link for a communication. With --confirm the link becomes
terminal (automatic linking will never override it) and the sender address is
learned as a pattern for future automatic matches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if (proposalID == 0) == (projectID == 0) {
				return fmt.Errorf("exactly one of --proposal or --project is required")
			}

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			opts := linker.AssignOpts{
				CommunicationID: commID,
				Confirm:         confirm,
			}
			if proposalID != 0 {
				opts.TargetKind = models.TargetProposal
				opts.TargetID = proposalID
			} else {
				opts.TargetKind = models.TargetProject
				opts.TargetID = projectID
			}

			if err := linker.Assign(gormDB, opts); err != nil {
				return err
			}
			fmt.Fprintf(out, "Linked communication %d to %s %d\n", commID, opts.TargetKind, opts.TargetID)
			if confirm {
				fmt.Fprintln(out, "Link confirmed; sender pattern learned")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	cmd.Flags().UintVar(&commID, "communication", 0, "communication id (required)")
	cmd.Flags().UintVar(&proposalID, "proposal", 0, "target proposal id")
	cmd.Flags().UintVar(&projectID, "project", 0, "target project id")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "mark the link confirmed and learn the sender pattern")
	cmd.MarkFlagRequired("communication")
	return cmd
}
