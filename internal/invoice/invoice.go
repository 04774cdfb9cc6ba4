// Package invoice manages project invoices and payment tracking.
package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/gorm"
)

// Sentinel errors for invoice entry points.
var (
	ErrNotFound        = errors.New("invoice: not found")
	ErrProjectNotFound = errors.New("invoice: project not found")
)

// DeriveStatus computes the invoice status from the amount comparison.
// Status is never stored independently of this truth.
func DeriveStatus(invoiceAmount, paymentAmount float64) string {
	switch {
	case paymentAmount <= 0:
		return models.InvoiceOutstanding
	case paymentAmount >= invoiceAmount:
		return models.InvoicePaid
	default:
		return models.InvoicePartial
	}
}

// CreateOpts holds parameters for creating an invoice.
type CreateOpts struct {
	ProjectCode string
	Number      string
	Amount      float64
	IssuedDate  time.Time
	DueDate     time.Time
}

// Create records a new invoice against the project with the given code.
func Create(db *gorm.DB, opts CreateOpts) (*models.Invoice, error) {
	if opts.Number == "" {
		return nil, fmt.Errorf("invoice: number is required")
	}
	if opts.Amount <= 0 {
		return nil, fmt.Errorf("invoice: amount must be positive")
	}

	var project models.Project
	err := db.Where("code = ?", opts.ProjectCode).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, opts.ProjectCode)
	}
	if err != nil {
		return nil, fmt.Errorf("invoice: look up project %s: %w", opts.ProjectCode, err)
	}

	issued := opts.IssuedDate
	if issued.IsZero() {
		issued = time.Now()
	}
	due := opts.DueDate
	if due.IsZero() {
		due = issued.AddDate(0, 0, 30)
	}

	inv := models.Invoice{
		ProjectID:     project.ID,
		Number:        opts.Number,
		InvoiceAmount: opts.Amount,
		IssuedDate:    issued,
		DueDate:       due,
		Status:        DeriveStatus(opts.Amount, 0),
	}
	if err := db.Create(&inv).Error; err != nil {
		return nil, fmt.Errorf("invoice: create %s: %w", opts.Number, err)
	}
	return &inv, nil
}

// RecordPayment adds a payment to an invoice and re-derives its status.
func RecordPayment(db *gorm.DB, number string, amount float64) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("invoice: payment must be positive")
	}

	var inv models.Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("number = ?", number).First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, number)
		}
		if err != nil {
			return fmt.Errorf("invoice: load %s: %w", number, err)
		}

		inv.PaymentAmount += amount
		inv.Status = DeriveStatus(inv.InvoiceAmount, inv.PaymentAmount)
		if err := tx.Model(&inv).Updates(map[string]interface{}{
			"payment_amount": inv.PaymentAmount,
			"status":         inv.Status,
		}).Error; err != nil {
			return fmt.Errorf("invoice: record payment on %s: %w", number, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// AgingBucket is one row of the outstanding-amount aging report.
type AgingBucket struct {
	Label       string
	Invoices    int
	Outstanding float64
}

// Aging buckets unpaid invoice balances by how far past due they are:
// current (not yet due), then 1-30, 31-60, 61-90 and 90+ days overdue.
func Aging(db *gorm.DB, now time.Time) ([]AgingBucket, error) {
	var invoices []models.Invoice
	if err := db.Where("status <> ?", models.InvoicePaid).Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("invoice: load unpaid invoices: %w", err)
	}

	buckets := []AgingBucket{
		{Label: "current"},
		{Label: "1-30"},
		{Label: "31-60"},
		{Label: "61-90"},
		{Label: "90+"},
	}
	for _, inv := range invoices {
		balance := inv.InvoiceAmount - inv.PaymentAmount
		if balance <= 0 {
			continue
		}
		overdue := int(now.Sub(inv.DueDate).Hours() / 24)
		var idx int
		switch {
		case overdue <= 0:
			idx = 0
		case overdue <= 30:
			idx = 1
		case overdue <= 60:
			idx = 2
		case overdue <= 90:
			idx = 3
		default:
			idx = 4
		}
		buckets[idx].Invoices++
		buckets[idx].Outstanding += balance
	}
	return buckets, nil
}

// ForProject returns all invoices of a project, newest first.
func ForProject(db *gorm.DB, projectID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := db.Where("project_id = ?", projectID).
		Order("issued_date DESC").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("invoice: list for project %d: %w", projectID, err)
	}
	return invoices, nil
}
