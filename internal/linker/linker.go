// Package linker links communications to proposals and projects with
// confidence scoring.
package linker

import (
	"errors"
	"fmt"

	"github.com/veldhuis/atelier/internal/config"
	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/gorm"
)

// domainWeight downweights learned domain matches relative to learned sender
// matches. Policy constant, kept for behavioral compatibility with historical
// link scores; not derived from data.
const domainWeight = 0.85

// manualConfidence is the confidence recorded for patterns learned from a
// manually confirmed assignment.
const manualConfidence = 0.95

// Sentinel errors distinguishing failure classes for callers.
var (
	ErrMalformed = errors.New("linker: malformed communication")
	ErrNotFound  = errors.New("linker: entity not found")
)

// Candidate is the linker's decision for one communication: the entity to
// link, how sure we are, and which signal produced the match.
type Candidate struct {
	TargetKind string // models.TargetProposal or models.TargetProject
	TargetID   uint
	Confidence float64
	Method     string
	Reason     string
	PatternID  uint // learned pattern applied, 0 for exact code matches
}

// Match computes the best link candidate for one communication without
// writing anything. Signals are tried in priority order: exact project-code
// match, learned sender pattern, learned domain pattern. Returns (nil, nil)
// when nothing matches; the communication then stays in the review queue.
func Match(db *gorm.DB, cfg *config.Config, comm *models.Communication) (*Candidate, error) {
	re, err := codePattern(cfg.CodePrefix)
	if err != nil {
		return nil, err
	}

	// 1. Exact code match in subject, body, then filename.
	for _, text := range []string{comm.Subject, comm.Body, comm.Filename} {
		code := ExtractCode(re, text)
		if code == "" {
			continue
		}
		cand, err := matchByCode(db, code)
		if err != nil {
			return nil, err
		}
		if cand != nil {
			return cand, nil
		}
		// A code-shaped token that matches no known entity is not an
		// error; weaker signals still get a chance.
	}

	sender := normalizeAddress(comm.Sender)
	if sender == "" {
		return nil, fmt.Errorf("%w: communication %d has no sender", ErrMalformed, comm.ID)
	}

	// 2. Learned sender pattern.
	cand, err := matchByPattern(db, models.PatternSender, sender, 1.0, models.MethodLearnedSender)
	if err != nil || cand != nil {
		return cand, err
	}

	// 3. Learned domain pattern, excluding generic mail providers.
	domain := senderDomain(sender)
	if domain == "" || cfg.IsGenericDomain(domain) {
		return nil, nil
	}
	return matchByPattern(db, models.PatternDomain, domain, domainWeight, models.MethodLearnedDomain)
}

// matchByCode resolves a normalized code against known projects first, then
// proposals. Projects win when both exist (a promoted proposal shares its
// code with the project; new mail belongs to the active engagement).
func matchByCode(db *gorm.DB, code string) (*Candidate, error) {
	var project models.Project
	err := db.Where("code = ?", code).First(&project).Error
	if err == nil {
		return &Candidate{
			TargetKind: models.TargetProject,
			TargetID:   project.ID,
			Confidence: 1.0,
			Method:     models.MethodExactCode,
			Reason:     fmt.Sprintf("code %s in communication", code),
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("linker: look up project %s: %w", code, err)
	}

	var proposal models.Proposal
	err = db.Where("code = ?", code).First(&proposal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("linker: look up proposal %s: %w", code, err)
	}
	return &Candidate{
		TargetKind: models.TargetProposal,
		TargetID:   proposal.ID,
		Confidence: 1.0,
		Method:     models.MethodExactCode,
		Reason:     fmt.Sprintf("code %s in communication", code),
	}, nil
}

// matchByPattern looks up a learned pattern and scales its stored confidence
// by weight (1.0 for sender patterns, domainWeight for domain patterns).
func matchByPattern(db *gorm.DB, patternType, key string, weight float64, method string) (*Candidate, error) {
	var pat models.LearnedPattern
	err := db.Where("pattern_type = ? AND pattern_key = ?", patternType, key).First(&pat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("linker: look up %s pattern %q: %w", patternType, key, err)
	}

	return &Candidate{
		TargetKind: pat.TargetKind,
		TargetID:   pat.TargetID,
		Confidence: pat.Confidence * weight,
		Method:     method,
		Reason:     fmt.Sprintf("%s pattern %s", patternType, key),
		PatternID:  pat.ID,
	}, nil
}

// hasConfirmedLink reports whether the communication already carries a
// manually confirmed link to any entity. Confirmed links are terminal and
// must never be competed with by automatic linking.
func hasConfirmedLink(db *gorm.DB, commID uint) (bool, error) {
	var count int64
	if err := db.Model(&models.EmailProposalLink{}).
		Where("communication_id = ? AND confirmed = ?", commID, true).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("linker: check confirmed proposal links: %w", err)
	}
	if count > 0 {
		return true, nil
	}
	if err := db.Model(&models.EmailProjectLink{}).
		Where("communication_id = ? AND confirmed = ?", commID, true).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("linker: check confirmed project links: %w", err)
	}
	return count > 0, nil
}

// linkExists reports whether a link between the communication and the
// candidate's entity is already present.
func linkExists(db *gorm.DB, commID uint, cand *Candidate) (bool, error) {
	var count int64
	switch cand.TargetKind {
	case models.TargetProposal:
		err := db.Model(&models.EmailProposalLink{}).
			Where("communication_id = ? AND proposal_id = ?", commID, cand.TargetID).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("linker: check proposal link: %w", err)
		}
	case models.TargetProject:
		err := db.Model(&models.EmailProjectLink{}).
			Where("communication_id = ? AND project_id = ?", commID, cand.TargetID).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("linker: check project link: %w", err)
		}
	default:
		return false, fmt.Errorf("linker: unknown target kind %q", cand.TargetKind)
	}
	return count > 0, nil
}

// createLink writes the link row for a candidate and bumps the usage counter
// of the learned pattern that produced it, if any.
func createLink(db *gorm.DB, commID uint, cand *Candidate, confirmed bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		switch cand.TargetKind {
		case models.TargetProposal:
			link := models.EmailProposalLink{
				CommunicationID: commID,
				ProposalID:      cand.TargetID,
				Confidence:      cand.Confidence,
				Method:          cand.Method,
				Reason:          cand.Reason,
				Confirmed:       confirmed,
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("linker: create proposal link: %w", err)
			}
		case models.TargetProject:
			link := models.EmailProjectLink{
				CommunicationID: commID,
				ProjectID:       cand.TargetID,
				Confidence:      cand.Confidence,
				Method:          cand.Method,
				Reason:          cand.Reason,
				Confirmed:       confirmed,
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("linker: create project link: %w", err)
			}
		default:
			return fmt.Errorf("linker: unknown target kind %q", cand.TargetKind)
		}

		if cand.PatternID != 0 {
			err := tx.Model(&models.LearnedPattern{}).
				Where("id = ?", cand.PatternID).
				UpdateColumn("occurrences", gorm.Expr("occurrences + 1")).Error
			if err != nil {
				return fmt.Errorf("linker: bump pattern %d usage: %w", cand.PatternID, err)
			}
		}
		return nil
	})
}
