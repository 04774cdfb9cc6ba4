// Package lifecycle promotes won proposals into active projects.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/gorm"
)

// Sentinel errors for promotion entry points.
var (
	ErrNotFound  = errors.New("lifecycle: proposal not found")
	ErrNoProject = errors.New("lifecycle: no project for proposal code")
	ErrLost      = errors.New("lifecycle: proposal is lost")
)

// PromoteOpts holds parameters for a promotion.
type PromoteOpts struct {
	SignedDate time.Time // contract-signed date; zero means now
	AutoCreate bool      // create the project row when none matches the code
}

// Result reports what a promotion did.
type Result struct {
	AlreadyDone    bool // proposal was archived before this call; nothing written
	ProposalID     uint
	ProjectID      uint
	ProjectCode    string
	CreatedProject bool
	LinksCopied    int
}

// Promote performs the proposal-to-project transition for the proposal with
// the given code, inside a single transaction:
//
//  1. resolve or create the matching project row
//  2. archive the proposal and record the signed date
//  3. activate the project and cross-link the two rows
//  4. copy proposal-side communication links to the project (set-union,
//     duplicates skipped; proposal links remain for audit)
//
// Re-invoking on an already-archived proposal is a no-op reporting success,
// so concurrent callers and retries cannot double-promote. Any step failing
// rolls the whole transition back.
func Promote(db *gorm.DB, proposalCode string, opts PromoteOpts) (*Result, error) {
	signed := opts.SignedDate
	if signed.IsZero() {
		signed = time.Now()
	}

	res := &Result{}
	err := db.Transaction(func(tx *gorm.DB) error {
		var prop models.Proposal
		err := tx.Where("code = ?", proposalCode).First(&prop).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, proposalCode)
		}
		if err != nil {
			return fmt.Errorf("lifecycle: load proposal %s: %w", proposalCode, err)
		}
		res.ProposalID = prop.ID

		if prop.Status == models.ProposalLost {
			return fmt.Errorf("%w: %s", ErrLost, proposalCode)
		}
		if prop.IsArchived {
			res.AlreadyDone = true
			if prop.ProjectID != nil {
				res.ProjectID = *prop.ProjectID
			}
			res.ProjectCode = prop.Code
			return nil
		}

		// Step 1: resolve or create the project.
		project, created, err := resolveProject(tx, &prop, signed, opts.AutoCreate)
		if err != nil {
			return err
		}
		res.ProjectID = project.ID
		res.ProjectCode = project.Code
		res.CreatedProject = created

		// Step 2: archive the proposal.
		updates := map[string]interface{}{
			"status":      models.ProposalWon,
			"is_archived": true,
			"signed_date": signed,
			"project_id":  project.ID,
		}
		if err := tx.Model(&prop).Updates(updates).Error; err != nil {
			return fmt.Errorf("lifecycle: archive proposal %s: %w", proposalCode, err)
		}

		// Step 3: activate the project with the back-reference.
		updates = map[string]interface{}{
			"status":      models.ProjectActive,
			"signed_date": signed,
			"proposal_id": prop.ID,
		}
		if err := tx.Model(project).Updates(updates).Error; err != nil {
			return fmt.Errorf("lifecycle: activate project %s: %w", project.Code, err)
		}

		// Step 4: copy communication links.
		copied, err := copyLinks(tx, prop.ID, project.ID)
		if err != nil {
			return err
		}
		res.LinksCopied = copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// resolveProject finds the project matching the proposal code, creating it
// when absent and autoCreate is set. Without autoCreate a missing project is
// a caller-visible failure; the transition never creates shadow projects
// implicitly.
func resolveProject(tx *gorm.DB, prop *models.Proposal, signed time.Time, autoCreate bool) (*models.Project, bool, error) {
	var project models.Project
	err := tx.Where("code = ?", prop.Code).First(&project).Error
	if err == nil {
		return &project, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("lifecycle: look up project %s: %w", prop.Code, err)
	}
	if !autoCreate {
		return nil, false, fmt.Errorf("%w: %s", ErrNoProject, prop.Code)
	}

	project = models.Project{
		Code:          prop.Code,
		Title:         prop.Name,
		Client:        prop.Client,
		Status:        models.ProjectActive,
		ContractValue: prop.Value,
		SignedDate:    &signed,
		ProposalID:    &prop.ID,
	}
	if err := tx.Create(&project).Error; err != nil {
		return nil, false, fmt.Errorf("lifecycle: create project %s: %w", prop.Code, err)
	}
	return &project, true, nil
}

// copyLinks unions the proposal's communication links into the project's
// link table, preserving confidence, method, reason and confirmation.
// Pairs already present on the project side are skipped, so retries add
// nothing.
func copyLinks(tx *gorm.DB, proposalID, projectID uint) (int, error) {
	var links []models.EmailProposalLink
	if err := tx.Where("proposal_id = ?", proposalID).Find(&links).Error; err != nil {
		return 0, fmt.Errorf("lifecycle: load proposal links: %w", err)
	}

	copied := 0
	for _, l := range links {
		var count int64
		err := tx.Model(&models.EmailProjectLink{}).
			Where("communication_id = ? AND project_id = ?", l.CommunicationID, projectID).
			Count(&count).Error
		if err != nil {
			return copied, fmt.Errorf("lifecycle: check project link: %w", err)
		}
		if count > 0 {
			continue
		}

		pl := models.EmailProjectLink{
			CommunicationID: l.CommunicationID,
			ProjectID:       projectID,
			Confidence:      l.Confidence,
			Method:          l.Method,
			Reason:          l.Reason,
			Confirmed:       l.Confirmed,
		}
		if err := tx.Create(&pl).Error; err != nil {
			return copied, fmt.Errorf("lifecycle: copy link for communication %d: %w", l.CommunicationID, err)
		}
		copied++
	}
	return copied, nil
}
