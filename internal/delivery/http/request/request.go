package request

// SyncBatchRequest selects one slice of the published page set.
type SyncBatchRequest struct {
	Offset    int `json:"offset"`
	BatchSize int `json:"batch_size"`
}

type SyncOutdatedRequest struct {
	Limit int `json:"limit"`
}

type ImportRequest struct {
	JobID  string `json:"job_id"`
	Action string `json:"action"` // "replace" (default) or "create_draft"
}

// ConnectionTestRequest carries credentials to verify. Persist defaults to true.
type ConnectionTestRequest struct {
	APIURL  string `json:"api_url"`
	APIKey  string `json:"api_key"`
	Persist *bool  `json:"persist,omitempty"`
}

type RedirectRequest struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	StatusCode int    `json:"status_code"`
}
