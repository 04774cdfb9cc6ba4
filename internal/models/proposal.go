package models

import "time"

// Proposal statuses. Lost proposals and archived (won) proposals are terminal.
const (
	ProposalDraft       = "draft"
	ProposalSent        = "sent"
	ProposalNegotiating = "negotiating"
	ProposalWon         = "won"
	ProposalLost        = "lost"
)

// Proposal is a pre-contract sales opportunity. Winning one promotes it to a
// Project via the lifecycle package; the proposal row is then archived, never
// deleted, so its communication links stay available for audit.
type Proposal struct {
	ID              uint       `gorm:"primaryKey;autoIncrement"`
	Code            string     `gorm:"size:32;uniqueIndex;not null"`
	Name            string     `gorm:"not null"`
	Client          string     `gorm:"size:128;index"`
	Value           float64
	Status          string     `gorm:"size:16;default:draft;index"`
	IsArchived      bool       `gorm:"default:false;index"`
	LastContactDate *time.Time
	NextActionDate  *time.Time
	SignedDate      *time.Time
	ProjectID       *uint // forward link set on promotion
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Links []EmailProposalLink `gorm:"foreignKey:ProposalID"`
}
