package models

import "time"

// Communication is an ingested email or document. Rows are immutable after
// ingest except for the enrichment fields (Category, Summary).
type Communication struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	MessageID string    `gorm:"size:255;uniqueIndex;not null"`
	Sender    string    `gorm:"size:255;index"`
	Subject   string    `gorm:"size:512"`
	Body      string    `gorm:"type:text"`
	Filename  string    `gorm:"size:255"` // attachment or document name, empty for plain email
	SentAt    time.Time `gorm:"index"`
	Category  string    `gorm:"size:64"`
	Summary   string    `gorm:"type:text"`
	CreatedAt time.Time
}

// Contact is a known client-side person, optionally tied to a project.
type Contact struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Name      string `gorm:"size:128"`
	Company   string `gorm:"size:128"`
	ProjectID *uint
	CreatedAt time.Time
	UpdatedAt time.Time
}
