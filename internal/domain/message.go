package domain

// ProcessMessage is the queue payload that triggers processing of one file.
type ProcessMessage struct {
	FileID   int64  `json:"file_id"`
	UserID   string `json:"user_id"`
	BlobPath string `json:"blob_path"`
	Retry    bool   `json:"retry,omitempty"`
	Attempt  int    `json:"attempt,omitempty"`
}
