package notify

import (
	"fmt"
	"time"

	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/gorm"
)

// staleAfter is how long a proposal may go without client contact before the
// digest flags it.
const staleAfter = 14 * 24 * time.Hour

// Digest holds the review metrics reported to the studio channel.
type Digest struct {
	GeneratedAt     time.Time
	UnlinkedCount   int
	OldestUnlinked  *time.Time
	StaleProposals  []models.Proposal
	OverdueInvoices []models.Invoice
}

// Empty reports whether the digest has nothing worth sending.
func (d *Digest) Empty() bool {
	return d.UnlinkedCount == 0 && len(d.StaleProposals) == 0 && len(d.OverdueInvoices) == 0
}

// BuildDigest queries the store for items needing human attention: unlinked
// communications, proposals with no recent contact, and overdue invoices.
func BuildDigest(db *gorm.DB, now time.Time) (*Digest, error) {
	d := &Digest{GeneratedAt: now}

	// Unlinked communications.
	var count int64
	err := db.Model(&models.Communication{}).
		Where("id NOT IN (?)", db.Model(&models.EmailProposalLink{}).Select("communication_id")).
		Where("id NOT IN (?)", db.Model(&models.EmailProjectLink{}).Select("communication_id")).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("notify: count unlinked: %w", err)
	}
	d.UnlinkedCount = int(count)

	if count > 0 {
		var oldest models.Communication
		err := db.
			Where("id NOT IN (?)", db.Model(&models.EmailProposalLink{}).Select("communication_id")).
			Where("id NOT IN (?)", db.Model(&models.EmailProjectLink{}).Select("communication_id")).
			Order("sent_at ASC").First(&oldest).Error
		if err == nil {
			d.OldestUnlinked = &oldest.SentAt
		}
	}

	// Stale proposals: live pipeline entries with no recent contact.
	cutoff := now.Add(-staleAfter)
	err = db.Where("is_archived = ? AND status IN ?", false,
		[]string{models.ProposalSent, models.ProposalNegotiating}).
		Where("last_contact_date IS NULL OR last_contact_date < ?", cutoff).
		Order("last_contact_date ASC").
		Find(&d.StaleProposals).Error
	if err != nil {
		return nil, fmt.Errorf("notify: load stale proposals: %w", err)
	}

	// Overdue invoices.
	err = db.Where("status <> ? AND due_date < ?", models.InvoicePaid, now).
		Order("due_date ASC").
		Find(&d.OverdueInvoices).Error
	if err != nil {
		return nil, fmt.Errorf("notify: load overdue invoices: %w", err)
	}

	return d, nil
}
