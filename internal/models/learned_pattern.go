package models

import "time"

// Learned pattern types.
const (
	PatternSender = "sender"
	PatternDomain = "domain"
)

// Learned pattern target kinds.
const (
	TargetProposal = "proposal"
	TargetProject  = "project"
)

// LearnedPattern is a previously confirmed sender- or domain-to-entity
// mapping, reused by the linker to auto-link future communications.
// Occurrences counts how often the pattern has been applied.
type LearnedPattern struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	PatternType string  `gorm:"size:16;not null;uniqueIndex:idx_pattern"`
	PatternKey  string  `gorm:"size:255;not null;uniqueIndex:idx_pattern"`
	TargetKind  string  `gorm:"size:16;not null"`
	TargetID    uint    `gorm:"not null"`
	Confidence  float64 `gorm:"not null"`
	Occurrences int     `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
