package linker

import (
	"fmt"

	"github.com/veldhuis/atelier/internal/config"
	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/gorm"
)

// BatchOpts holds parameters for a linking batch run.
type BatchOpts struct {
	Limit int // max communications to process; 0 uses cfg.Linker.BatchLimit
}

// ItemError records one communication that could not be processed.
type ItemError struct {
	CommunicationID uint
	MessageID       string
	Err             error
}

// BatchSummary reports per-item outcomes of a linking batch. Batches never
// fail atomically: an unprocessable item lands in Errors and the run
// continues.
type BatchSummary struct {
	Processed int
	Linked    int
	Skipped   int
	Failed    int
	Errors    []ItemError
}

// LinkBatch links up to opts.Limit currently unlinked communications. Safe
// to re-run: communications are picked up only while unlinked, a candidate
// whose link already exists is counted as skipped, and confirmed links are
// never competed with.
func LinkBatch(db *gorm.DB, cfg *config.Config, opts BatchOpts) (*BatchSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.Linker.BatchLimit
	}

	comms, err := unlinked(db, limit)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{}
	for i := range comms {
		comm := &comms[i]
		summary.Processed++

		outcome, err := LinkOne(db, cfg, comm)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, ItemError{
				CommunicationID: comm.ID,
				MessageID:       comm.MessageID,
				Err:             err,
			})
			continue
		}
		switch outcome {
		case OutcomeLinked:
			summary.Linked++
		case OutcomeSkipped, OutcomeNoMatch:
			summary.Skipped++
		}
	}
	return summary, nil
}

// Outcome classifies the result of linking a single communication.
type Outcome int

const (
	OutcomeNoMatch Outcome = iota
	OutcomeLinked
	OutcomeSkipped
)

// LinkOne matches and links a single communication. Existing confirmed links
// and already-present candidate links make it a no-op reported as skipped.
func LinkOne(db *gorm.DB, cfg *config.Config, comm *models.Communication) (Outcome, error) {
	confirmed, err := hasConfirmedLink(db, comm.ID)
	if err != nil {
		return OutcomeNoMatch, err
	}
	if confirmed {
		return OutcomeSkipped, nil
	}

	cand, err := Match(db, cfg, comm)
	if err != nil {
		return OutcomeNoMatch, err
	}
	if cand == nil {
		return OutcomeNoMatch, nil
	}

	exists, err := linkExists(db, comm.ID, cand)
	if err != nil {
		return OutcomeNoMatch, err
	}
	if exists {
		return OutcomeSkipped, nil
	}

	if err := createLink(db, comm.ID, cand, false); err != nil {
		// A concurrent writer may have inserted the same link between the
		// existence check and the insert; the unique index turns that into
		// an error we treat as success-no-op.
		if again, checkErr := linkExists(db, comm.ID, cand); checkErr == nil && again {
			return OutcomeSkipped, nil
		}
		return OutcomeNoMatch, err
	}
	return OutcomeLinked, nil
}

// unlinked returns up to limit communications that carry no link of either
// kind, oldest first.
func unlinked(db *gorm.DB, limit int) ([]models.Communication, error) {
	var comms []models.Communication
	err := db.
		Where("id NOT IN (?)", db.Model(&models.EmailProposalLink{}).Select("communication_id")).
		Where("id NOT IN (?)", db.Model(&models.EmailProjectLink{}).Select("communication_id")).
		Order("sent_at ASC, id ASC").
		Limit(limit).
		Find(&comms).Error
	if err != nil {
		return nil, fmt.Errorf("linker: list unlinked communications: %w", err)
	}
	return comms, nil
}
