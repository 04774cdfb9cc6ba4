package models

import "time"

// SchemaMigration is the ledger of applied forward-only migrations.
type SchemaMigration struct {
	ID        string `gorm:"primaryKey;size:64"`
	AppliedAt time.Time
}
