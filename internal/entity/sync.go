package entity

import "time"

// SyncStatus is the per-page sync state machine: never -> pending -> synced|failed.
type SyncStatus string

const (
	SyncStatusNever   SyncStatus = "never"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// Page meta keys holding the sync annotations.
const (
	MetaSyncStatus         = "_siloq_sync_status"
	MetaLastSynced         = "_siloq_last_synced"
	MetaHasSchema          = "_siloq_has_schema"
	MetaGeneratedFromJobID = "_siloq_generated_from_job"
	MetaSyncError          = "_siloq_sync_error"
	MetaSyncRetryable      = "_siloq_sync_retryable"
)

// SyncState holds the mutable annotations the engine writes onto a page.
type SyncState struct {
	Status             SyncStatus `json:"sync_status"`
	LastSyncedAt       *time.Time `json:"last_synced_at,omitempty"`
	HasSchema          bool       `json:"has_schema"`
	GeneratedFromJobID string     `json:"generated_from_job_id,omitempty"`
	LastError          string     `json:"last_error,omitempty"`
	Retryable          bool       `json:"retryable"`
}

// OutcomeStatus is the result of one sync attempt.
type OutcomeStatus string

const (
	OutcomeSynced  OutcomeStatus = "synced"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Skip and failure reasons reported in outcomes.
const (
	ReasonNotFound         = "not_found"
	ReasonWrongType        = "unsupported_type"
	ReasonRevision         = "revision"
	ReasonNotPublished     = "not_published"
	ReasonDummyScanOnly    = "dummy_scan_only"
	ReasonAutoSyncDisabled = "auto_sync_disabled"
	ReasonNotConfigured    = "not_configured"
)

// SyncOutcome reports what happened to a single page.
type SyncOutcome struct {
	PageID    int64         `json:"page_id"`
	Status    OutcomeStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Message   string        `json:"message,omitempty"`
	Retryable bool          `json:"retryable"`
	ErrorKind string        `json:"error_kind,omitempty"`
	RemoteID  string        `json:"remote_id,omitempty"`
	SyncedAt  *time.Time    `json:"synced_at,omitempty"`
}

// BatchRequest selects a slice of the page set.
type BatchRequest struct {
	Offset    int `json:"offset"`
	BatchSize int `json:"batch_size"`
}

// BatchSummary aggregates the outcomes of one batch, in input order.
type BatchSummary struct {
	Processed  int            `json:"processed"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Skipped    int            `json:"skipped"`
	Offset     int            `json:"offset"`
	BatchSize  int            `json:"batch_size"`
	NextOffset int            `json:"next_offset"`
	Total      int            `json:"total"`
	HasMore    bool           `json:"has_more"`
	Results    []*SyncOutcome `json:"results"`
}

// Add records an outcome in the summary.
func (s *BatchSummary) Add(o *SyncOutcome) {
	s.Processed++
	switch o.Status {
	case OutcomeSynced:
		s.Succeeded++
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
	s.Results = append(s.Results, o)
}

// SyncPayload is what gets pushed to the remote API for one page.
type SyncPayload struct {
	ExternalID  int64     `json:"wp_post_id"`
	Type        string    `json:"post_type"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	URL         string    `json:"url"`
	Content     string    `json:"content"`
	Text        string    `json:"text"`
	WordCount   int       `json:"word_count"`
	Headings    []string  `json:"headings"`
	HasSchema   bool      `json:"has_schema"`
	ContentHash string    `json:"content_hash"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// SyncReceipt is the remote acknowledgement of a page sync.
type SyncReceipt struct {
	RemoteID  string `json:"id"`
	HasSchema bool   `json:"has_schema"`
	Created   bool   `json:"created"`
}
