package linker

import (
	"errors"
	"fmt"

	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignOpts holds parameters for a manual link assignment from the review
// queue.
type AssignOpts struct {
	CommunicationID uint
	TargetKind      string // models.TargetProposal or models.TargetProject
	TargetID        uint
	Confirm         bool // mark the link terminal and learn the sender pattern
}

// Assign creates a manual link between a communication and an entity. With
// Confirm set, the link becomes terminal (automatic passes will never
// compete with it) and the sender is recorded as a learned pattern so future
// mail from the same address links automatically.
func Assign(db *gorm.DB, opts AssignOpts) error {
	var comm models.Communication
	if err := db.First(&comm, opts.CommunicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: communication %d", ErrNotFound, opts.CommunicationID)
		}
		return fmt.Errorf("linker: load communication %d: %w", opts.CommunicationID, err)
	}
	if err := targetExists(db, opts.TargetKind, opts.TargetID); err != nil {
		return err
	}

	cand := &Candidate{
		TargetKind: opts.TargetKind,
		TargetID:   opts.TargetID,
		Confidence: 1.0,
		Method:     models.MethodManual,
		Reason:     "manual assignment",
	}

	exists, err := linkExists(db, comm.ID, cand)
	if err != nil {
		return err
	}
	if exists {
		if opts.Confirm {
			return confirmExisting(db, comm, opts)
		}
		return nil
	}

	if err := createLink(db, comm.ID, cand, opts.Confirm); err != nil {
		return err
	}
	if opts.Confirm {
		return learnSenderPattern(db, comm.Sender, opts.TargetKind, opts.TargetID)
	}
	return nil
}

// confirmExisting upgrades an already-present link to confirmed and learns
// the sender pattern. Re-confirming is a no-op.
func confirmExisting(db *gorm.DB, comm models.Communication, opts AssignOpts) error {
	var err error
	switch opts.TargetKind {
	case models.TargetProposal:
		err = db.Model(&models.EmailProposalLink{}).
			Where("communication_id = ? AND proposal_id = ?", comm.ID, opts.TargetID).
			Update("confirmed", true).Error
	case models.TargetProject:
		err = db.Model(&models.EmailProjectLink{}).
			Where("communication_id = ? AND project_id = ?", comm.ID, opts.TargetID).
			Update("confirmed", true).Error
	default:
		return fmt.Errorf("linker: unknown target kind %q", opts.TargetKind)
	}
	if err != nil {
		return fmt.Errorf("linker: confirm link: %w", err)
	}
	return learnSenderPattern(db, comm.Sender, opts.TargetKind, opts.TargetID)
}

// learnSenderPattern upserts a sender pattern from a confirmed assignment.
func learnSenderPattern(db *gorm.DB, sender, targetKind string, targetID uint) error {
	addr := normalizeAddress(sender)
	if addr == "" {
		return nil // nothing to learn from
	}

	pat := models.LearnedPattern{
		PatternType: models.PatternSender,
		PatternKey:  addr,
		TargetKind:  targetKind,
		TargetID:    targetID,
		Confidence:  manualConfidence,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pattern_type"}, {Name: "pattern_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_kind", "target_id", "confidence"}),
	}).Create(&pat).Error
	if err != nil {
		return fmt.Errorf("linker: learn sender pattern %q: %w", addr, err)
	}
	return nil
}

func targetExists(db *gorm.DB, kind string, id uint) error {
	var err error
	switch kind {
	case models.TargetProposal:
		err = db.First(&models.Proposal{}, id).Error
	case models.TargetProject:
		err = db.First(&models.Project{}, id).Error
	default:
		return fmt.Errorf("linker: unknown target kind %q", kind)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
	}
	if err != nil {
		return fmt.Errorf("linker: look up %s %d: %w", kind, id, err)
	}
	return nil
}
