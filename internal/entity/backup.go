package entity

import "time"

// Backup mirrors the `siloq_backups` table schema.
type Backup struct {
	ID              int64     `json:"id"`
	PageID          int64     `json:"page_id"`
	Title           string    `json:"title"`
	ContentSnapshot string    `json:"content_snapshot"`
	SourceJobID     string    `json:"source_job_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
