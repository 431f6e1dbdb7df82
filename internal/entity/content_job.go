package entity

import "time"

// JobStatus is the remote content-generation job status.
type JobStatus string

const (
	JobQueued   JobStatus = "queued"
	JobRunning  JobStatus = "running"
	JobComplete JobStatus = "complete"
	JobFailed   JobStatus = "failed"
)

// IsTerminal reports whether the job can no longer change.
func (s JobStatus) IsTerminal() bool {
	return s == JobComplete || s == JobFailed
}

// GeneratedContent is the payload of a completed job.
type GeneratedContent struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	MetaDescription string `json:"meta_description,omitempty"`
	Schema          string `json:"schema,omitempty"`
}

// ContentJob is the local view of a remote job. It is never mutated locally.
type ContentJob struct {
	ID        string            `json:"id"`
	PageID    int64             `json:"wp_post_id"`
	Status    JobStatus         `json:"status"`
	Content   *GeneratedContent `json:"content,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Import actions.
const (
	ImportActionReplace     = "replace"
	ImportActionCreateDraft = "create_draft"
)

// ImportOptions controls how a completed job is applied.
type ImportOptions struct {
	Action string `json:"action"`
}

// ImportResult references the page that received the content.
type ImportResult struct {
	PageID   int64  `json:"page_id"`
	Action   string `json:"action"`
	JobID    string `json:"job_id"`
	BackupID int64  `json:"backup_id,omitempty"`
}

// RestoreResult references the backup that was applied.
type RestoreResult struct {
	PageID     int64     `json:"page_id"`
	BackupID   int64     `json:"backup_id"`
	BackupTime time.Time `json:"backup_created_at"`
}
