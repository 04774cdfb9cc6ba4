package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veldhuis/atelier/internal/db"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBMigrateCmd())
	cmd.AddCommand(newDBStatusCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Atelier database",
		Long:  "Opens the configured store and applies all pending schema migrations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBMigrate(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	return cmd
}

func newDBMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  "Applies pending forward-only migrations, recording each in the schema_migrations ledger. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBMigrate(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	return cmd
}

func runDBMigrate(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected to %s store\n", cfg.Database.Driver)

	applied, err := db.Migrate(gormDB, out)
	if err != nil {
		return err
	}
	if applied == 0 {
		fmt.Fprintln(out, "Schema is up to date")
	} else {
		fmt.Fprintf(out, "Applied %d migration(s)\n", applied)
	}
	return nil
}

func newDBStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			pending, err := db.Pending(gormDB)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(out, "Schema is up to date")
				return nil
			}
			fmt.Fprintf(out, "%d pending migration(s):\n", len(pending))
			for _, id := range pending {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	return cmd
}
