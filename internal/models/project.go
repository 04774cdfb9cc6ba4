package models

import "time"

// Project statuses.
const (
	ProjectProposal  = "proposal"
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
	ProjectOnHold    = "on_hold"
)

// Project is an active, contracted engagement with a client.
// Projects are never hard-deleted; lifecycle changes go through Status.
type Project struct {
	ID            uint       `gorm:"primaryKey;autoIncrement"`
	Code          string     `gorm:"size:32;uniqueIndex;not null"`
	Title         string     `gorm:"not null"`
	Client        string     `gorm:"size:128;index"`
	Status        string     `gorm:"size:16;default:active;index"`
	ContractValue float64
	SignedDate    *time.Time
	ProposalID    *uint // source proposal when promoted, nil when created directly
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Invoices []Invoice          `gorm:"foreignKey:ProjectID"`
	Links    []EmailProjectLink `gorm:"foreignKey:ProjectID"`
}
