// models/import_batch.go
package models

import "time"

// ImportBatch tracks one uploaded file (or Google Sheet pull) end to end.
type ImportBatch struct {
	ID          int       `json:"id"`
	Source      string    `json:"source"` // "csv", "excel", "sheet"
	Filename    string    `json:"filename,omitempty"`
	UploadedBy  int       `json:"uploaded_by"`
	RecordCount int       `json:"record_count"`
	IssueCount  int       `json:"issue_count"`
	CreatedAt   time.Time `json:"created_at"`
}
