package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/veldhuis/atelier/internal/dashboard"
	"github.com/veldhuis/atelier/internal/models"
)

func newProposalsCmd() *cobra.Command {
	var (
		configPath string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "List sales proposals",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			query := gormDB.Order("code ASC")
			if !all {
				query = query.Where("is_archived = ?", false)
			}
			var proposals []models.Proposal
			if err := query.Find(&proposals).Error; err != nil {
				return fmt.Errorf("list proposals: %w", err)
			}
			if len(proposals) == 0 {
				fmt.Fprintln(out, "No proposals")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tCLIENT\tVALUE\tSTATUS")
			for _, p := range proposals {
				status := p.Status
				if p.IsArchived {
					status += " (archived)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Code, p.Name, p.Client, formatAmount(p.Value), status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	cmd.Flags().BoolVar(&all, "all", false, "include archived proposals")
	return cmd
}

func newProjectsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects with link counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			rows, err := dashboard.ProjectList(gormDB)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No projects")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tTITLE\tCLIENT\tSTATUS\tVALUE\tLINKS")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
					r.Code, r.Title, r.Client, r.Status, formatAmount(r.ContractValue), r.LinkCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	return cmd
}
