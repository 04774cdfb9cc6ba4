package models

import "time"

// Link methods, ordered by certainty. Exact code matches beat learned sender
// patterns, which beat learned domain patterns. Manual assignments come from
// the review CLI and are the only links that may carry Confirmed=true.
const (
	MethodExactCode     = "exact_code"
	MethodLearnedSender = "learned_sender"
	MethodLearnedDomain = "learned_domain"
	MethodManual        = "manual_assignment"
)

// EmailProposalLink is a scored association between a communication and a
// proposal. The composite unique index rejects duplicate (communication,
// proposal) pairs at write time.
type EmailProposalLink struct {
	ID              uint    `gorm:"primaryKey;autoIncrement"`
	CommunicationID uint    `gorm:"not null;uniqueIndex:idx_comm_proposal"`
	ProposalID      uint    `gorm:"not null;uniqueIndex:idx_comm_proposal"`
	Confidence      float64 `gorm:"not null"`
	Method          string  `gorm:"size:32;not null"`
	Reason          string  `gorm:"size:255"`
	Confirmed       bool    `gorm:"default:false"`
	CreatedAt       time.Time

	Communication Communication `gorm:"foreignKey:CommunicationID"`
	Proposal      Proposal      `gorm:"foreignKey:ProposalID"`
}

// EmailProjectLink is the project-side counterpart of EmailProposalLink.
// Promotion copies proposal links here as a set-union; the proposal rows
// remain untouched.
type EmailProjectLink struct {
	ID              uint    `gorm:"primaryKey;autoIncrement"`
	CommunicationID uint    `gorm:"not null;uniqueIndex:idx_comm_project"`
	ProjectID       uint    `gorm:"not null;uniqueIndex:idx_comm_project"`
	Confidence      float64 `gorm:"not null"`
	Method          string  `gorm:"size:32;not null"`
	Reason          string  `gorm:"size:255"`
	Confirmed       bool    `gorm:"default:false"`
	CreatedAt       time.Time

	Communication Communication `gorm:"foreignKey:CommunicationID"`
	Project       Project       `gorm:"foreignKey:ProjectID"`
}
