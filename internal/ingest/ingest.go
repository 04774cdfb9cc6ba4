// Package ingest imports communication records exported by the mail fetcher.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/gorm"
)

// Record is one communication in a JSON export file.
type Record struct {
	MessageID string `json:"message_id"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Filename  string `json:"filename"`
	SentAt    string `json:"sent_at"` // RFC 3339
}

// ItemError records one export record that could not be imported.
type ItemError struct {
	Index     int
	MessageID string
	Err       error
}

// Summary reports per-item outcomes of an import. A bad record is skipped
// and reported here; it never aborts the rest of the file.
type Summary struct {
	Processed int
	Imported  int
	Skipped   int // already ingested (duplicate message id)
	Failed    int
	Errors    []ItemError
}

// ImportFile reads a JSON array of communication records from path and
// inserts the new ones. Duplicate message ids are no-ops counted as skipped.
func ImportFile(db *gorm.DB, path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("ingest: parse %s: %w", path, err)
	}
	return Import(db, records)
}

// Import inserts communication records, one at a time so a malformed record
// only costs itself.
func Import(db *gorm.DB, records []Record) (*Summary, error) {
	summary := &Summary{}
	for i, r := range records {
		summary.Processed++

		comm, err := toCommunication(r)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, ItemError{Index: i, MessageID: r.MessageID, Err: err})
			continue
		}

		var count int64
		if err := db.Model(&models.Communication{}).
			Where("message_id = ?", comm.MessageID).Count(&count).Error; err != nil {
			return summary, fmt.Errorf("ingest: check message %s: %w", comm.MessageID, err)
		}
		if count > 0 {
			summary.Skipped++
			continue
		}

		if err := db.Create(comm).Error; err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, ItemError{Index: i, MessageID: r.MessageID, Err: err})
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

// toCommunication validates an export record and converts it to a model row.
func toCommunication(r Record) (*models.Communication, error) {
	if r.MessageID == "" {
		return nil, fmt.Errorf("ingest: record has no message id")
	}
	if r.Sender == "" && r.Filename == "" {
		return nil, fmt.Errorf("ingest: record %s has neither sender nor filename", r.MessageID)
	}

	sentAt := time.Now()
	if r.SentAt != "" {
		parsed, err := time.Parse(time.RFC3339, r.SentAt)
		if err != nil {
			return nil, fmt.Errorf("ingest: record %s has bad sent_at %q: %w", r.MessageID, r.SentAt, err)
		}
		sentAt = parsed
	}

	return &models.Communication{
		MessageID: r.MessageID,
		Sender:    r.Sender,
		Subject:   r.Subject,
		Body:      r.Body,
		Filename:  r.Filename,
		SentAt:    sentAt,
	}, nil
}
