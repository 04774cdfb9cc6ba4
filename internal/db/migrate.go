package db

import (
	"fmt"
	"io"
	"time"

	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/gorm"
)

// Migration is a single named, forward-only schema change. Applied migrations
// are recorded in the schema_migrations table and never re-run.
type Migration struct {
	ID    string
	Apply func(tx *gorm.DB) error
}

// migrations is the ordered list of all schema migrations. Append only;
// never reorder or edit an entry that has shipped.
var migrations = []Migration{
	{
		ID: "001_core_entities",
		Apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.Project{},
				&models.Proposal{},
				&models.Communication{},
				&models.Contact{},
			)
		},
	},
	{
		ID: "002_links",
		Apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.EmailProposalLink{},
				&models.EmailProjectLink{},
			)
		},
	},
	{
		ID: "003_invoices",
		Apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Invoice{})
		},
	},
	{
		ID: "004_learned_patterns",
		Apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.LearnedPattern{})
		},
	},
}

// Migrate applies all pending migrations in order, recording each in the
// schema_migrations ledger. Re-running is a no-op for already-applied
// entries. Progress lines are written to out when it is non-nil.
func Migrate(db *gorm.DB, out io.Writer) (int, error) {
	if err := db.AutoMigrate(&models.SchemaMigration{}); err != nil {
		return 0, fmt.Errorf("db: migrate ledger table: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		done, err := isApplied(db, m.ID)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := m.Apply(tx); err != nil {
				return fmt.Errorf("db: apply migration %s: %w", m.ID, err)
			}
			rec := models.SchemaMigration{ID: m.ID, AppliedAt: time.Now()}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("db: record migration %s: %w", m.ID, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}

		applied++
		if out != nil {
			fmt.Fprintf(out, "Applied %s\n", m.ID)
		}
	}
	return applied, nil
}

// Pending returns the IDs of migrations not yet applied.
func Pending(db *gorm.DB) ([]string, error) {
	if err := db.AutoMigrate(&models.SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("db: migrate ledger table: %w", err)
	}
	var pending []string
	for _, m := range migrations {
		done, err := isApplied(db, m.ID)
		if err != nil {
			return nil, err
		}
		if !done {
			pending = append(pending, m.ID)
		}
	}
	return pending, nil
}

func isApplied(db *gorm.DB, id string) (bool, error) {
	var count int64
	if err := db.Model(&models.SchemaMigration{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("db: check migration %s: %w", id, err)
	}
	return count > 0, nil
}
