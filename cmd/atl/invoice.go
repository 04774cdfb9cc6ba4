package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/veldhuis/atelier/internal/invoice"
	"github.com/veldhuis/atelier/internal/models"
)

func newInvoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Invoice and payment tracking",
	}

	cmd.AddCommand(newInvoiceAddCmd())
	cmd.AddCommand(newInvoicePayCmd())
	cmd.AddCommand(newInvoiceListCmd())
	cmd.AddCommand(newInvoiceAgingCmd())
	return cmd
}

func newInvoiceAddCmd() *cobra.Command {
	var (
		configPath string
		project    string
		number     string
		amount     float64
		dueDate    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new invoice against a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			due, err := parseDate(dueDate)
			if err != nil {
				return err
			}

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			inv, err := invoice.Create(gormDB, invoice.CreateOpts{
				ProjectCode: project,
				Number:      number,
				Amount:      amount,
				DueDate:     due,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created invoice %s for %s, due %s\n",
				inv.Number, formatAmount(inv.InvoiceAmount), inv.DueDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	cmd.Flags().StringVar(&project, "project", "", "project code (required)")
	cmd.Flags().StringVar(&number, "number", "", "invoice number (required)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "invoice amount (required)")
	cmd.Flags().StringVar(&dueDate, "due", "", "due date (YYYY-MM-DD, default 30 days out)")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("number")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newInvoicePayCmd() *cobra.Command {
	var (
		configPath string
		number     string
		amount     float64
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Record a payment against an invoice",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			inv, err := invoice.RecordPayment(gormDB, number, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Invoice %s: paid %s of %s, status %s\n",
				inv.Number, formatAmount(inv.PaymentAmount), formatAmount(inv.InvoiceAmount), inv.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	cmd.Flags().StringVar(&number, "number", "", "invoice number (required)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "payment amount (required)")
	cmd.MarkFlagRequired("number")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newInvoiceListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unpaid invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			var invoices []models.Invoice
			if err := gormDB.Preload("Project").
				Where("status <> ?", models.InvoicePaid).
				Order("due_date ASC").Find(&invoices).Error; err != nil {
				return fmt.Errorf("list invoices: %w", err)
			}
			if len(invoices) == 0 {
				fmt.Fprintln(out, "No unpaid invoices")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NUMBER\tPROJECT\tDUE\tAMOUNT\tPAID\tSTATUS")
			for _, inv := range invoices {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					inv.Number, inv.Project.Code, inv.DueDate.Format("2006-01-02"),
					formatAmount(inv.InvoiceAmount), formatAmount(inv.PaymentAmount), inv.Status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	return cmd
}

func newInvoiceAgingCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "aging",
		Short: "Show outstanding balances by overdue bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			buckets, err := invoice.Aging(gormDB, time.Now())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BUCKET\tINVOICES\tOUTSTANDING")
			for _, b := range buckets {
				fmt.Fprintf(w, "%s\t%d\t%s\n", b.Label, b.Invoices, formatAmount(b.Outstanding))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Atelier config file")
	return cmd
}
