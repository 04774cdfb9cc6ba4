package dashboard

import (
	"errors"
	"time"

	"github.com/veldhuis/atelier/internal/invoice"
	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("dashboard: not found")

// PipelineRow holds proposal counts and value for one status.
type PipelineRow struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Value  float64 `json:"value"`
}

// PipelineSummary returns live proposal counts and total value by status.
// Archived proposals are excluded; they belong to their project now.
func PipelineSummary(db *gorm.DB) ([]PipelineRow, error) {
	var rows []PipelineRow
	err := db.Model(&models.Proposal{}).
		Select("status, count(*) as count, sum(value) as value").
		Where("is_archived = ?", false).
		Group("status").
		Order("status ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ProjectRow holds project data for the list view.
type ProjectRow struct {
	Code          string     `json:"code"`
	Title         string     `json:"title"`
	Client        string     `json:"client"`
	Status        string     `json:"status"`
	ContractValue float64    `json:"contract_value"`
	SignedDate    *time.Time `json:"signed_date,omitempty"`
	LinkCount     int        `json:"link_count"`
}

// ProjectList returns all projects with their communication link counts.
func ProjectList(db *gorm.DB) ([]ProjectRow, error) {
	var projects []models.Project
	if err := db.Order("code ASC").Find(&projects).Error; err != nil {
		return nil, err
	}

	rows := make([]ProjectRow, len(projects))
	for i, p := range projects {
		var linkCount int64
		if err := db.Model(&models.EmailProjectLink{}).
			Where("project_id = ?", p.ID).Count(&linkCount).Error; err != nil {
			return nil, err
		}
		rows[i] = ProjectRow{
			Code:          p.Code,
			Title:         p.Title,
			Client:        p.Client,
			Status:        p.Status,
			ContractValue: p.ContractValue,
			SignedDate:    p.SignedDate,
			LinkCount:     int(linkCount),
		}
	}
	return rows, nil
}

// LinkedCommRow is one communication linked to a project.
type LinkedCommRow struct {
	MessageID  string    `json:"message_id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	SentAt     time.Time `json:"sent_at"`
	Confidence float64   `json:"confidence"`
	Method     string    `json:"method"`
	Confirmed  bool      `json:"confirmed"`
}

// InvoiceRow is one invoice in a project detail view.
type InvoiceRow struct {
	Number        string    `json:"number"`
	InvoiceAmount float64   `json:"invoice_amount"`
	PaymentAmount float64   `json:"payment_amount"`
	DueDate       time.Time `json:"due_date"`
	Status        string    `json:"status"`
}

// ProjectDetail bundles a project with its communications and invoices.
type ProjectDetail struct {
	ProjectRow
	Communications []LinkedCommRow `json:"communications"`
	Invoices       []InvoiceRow    `json:"invoices"`
}

// ProjectByCode returns the full detail view for one project.
func ProjectByCode(db *gorm.DB, code string) (*ProjectDetail, error) {
	var project models.Project
	err := db.Where("code = ?", code).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var links []models.EmailProjectLink
	if err := db.Preload("Communication").
		Where("project_id = ?", project.ID).
		Order("id ASC").Find(&links).Error; err != nil {
		return nil, err
	}

	detail := &ProjectDetail{
		ProjectRow: ProjectRow{
			Code:          project.Code,
			Title:         project.Title,
			Client:        project.Client,
			Status:        project.Status,
			ContractValue: project.ContractValue,
			SignedDate:    project.SignedDate,
			LinkCount:     len(links),
		},
		Communications: make([]LinkedCommRow, 0, len(links)),
	}
	for _, l := range links {
		detail.Communications = append(detail.Communications, LinkedCommRow{
			MessageID:  l.Communication.MessageID,
			Sender:     l.Communication.Sender,
			Subject:    l.Communication.Subject,
			SentAt:     l.Communication.SentAt,
			Confidence: l.Confidence,
			Method:     l.Method,
			Confirmed:  l.Confirmed,
		})
	}

	invoices, err := invoice.ForProject(db, project.ID)
	if err != nil {
		return nil, err
	}
	detail.Invoices = make([]InvoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		detail.Invoices = append(detail.Invoices, InvoiceRow{
			Number:        inv.Number,
			InvoiceAmount: inv.InvoiceAmount,
			PaymentAmount: inv.PaymentAmount,
			DueDate:       inv.DueDate,
			Status:        inv.Status,
		})
	}
	return detail, nil
}

// ReviewRow is one unlinked communication awaiting manual review.
type ReviewRow struct {
	ID        uint      `json:"id"`
	MessageID string    `json:"message_id"`
	Sender    string    `json:"sender"`
	Subject   string    `json:"subject"`
	Filename  string    `json:"filename,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// ReviewQueue returns communications without any link, oldest first.
func ReviewQueue(db *gorm.DB, limit int) ([]ReviewRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var comms []models.Communication
	err := db.
		Where("id NOT IN (?)", db.Model(&models.EmailProposalLink{}).Select("communication_id")).
		Where("id NOT IN (?)", db.Model(&models.EmailProjectLink{}).Select("communication_id")).
		Order("sent_at ASC, id ASC").
		Limit(limit).
		Find(&comms).Error
	if err != nil {
		return nil, err
	}

	rows := make([]ReviewRow, len(comms))
	for i, c := range comms {
		rows[i] = ReviewRow{
			ID:        c.ID,
			MessageID: c.MessageID,
			Sender:    c.Sender,
			Subject:   c.Subject,
			Filename:  c.Filename,
			SentAt:    c.SentAt,
		}
	}
	return rows, nil
}
