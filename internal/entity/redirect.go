package entity

import "time"

// Redirect mirrors the `siloq_redirects` table schema.
type Redirect struct {
	ID         int64     `json:"id"`
	SourcePath string    `json:"source_path"`
	TargetPath string    `json:"target_path"`
	StatusCode int       `json:"status_code"`
	CreatedAt  time.Time `json:"created_at"`
}
