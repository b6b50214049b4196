package models

// TutorialListResponse is the body of GET /api/v1/tutorials
type TutorialListResponse struct {
	Success bool       `json:"success"`
	Count   int        `json:"count"`
	Source  Source     `json:"source"`
	Data    []Tutorial `json:"data"`
}

// TutorialResponse wraps a single tutorial
type TutorialResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    *Tutorial `json:"data"`
}

// SyncResult is the data of a sync response
type SyncResult struct {
	Count int `json:"count"`
}

// SyncResponse is the body of POST /api/v1/tutorials/sync
type SyncResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    SyncResult `json:"data"`
}

// MessageResponse is a success response without data
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed API request.
// RequestID echoes the X-Request-ID header so a failure can be matched with its log lines.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
