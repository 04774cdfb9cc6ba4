package models

import "time"

// Invoice statuses. Status is always derived from the amount comparison at
// write time (see internal/invoice), never stored independently of it.
const (
	InvoiceOutstanding = "outstanding"
	InvoicePartial     = "partial"
	InvoicePaid        = "paid"
)

// Invoice belongs to a Project.
type Invoice struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID     uint   `gorm:"not null;index"`
	Number        string `gorm:"size:32;uniqueIndex;not null"`
	InvoiceAmount float64
	PaymentAmount float64
	IssuedDate    time.Time
	DueDate       time.Time `gorm:"index"`
	Status        string    `gorm:"size:16;default:outstanding;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}
