package domain

import (
	"fmt"
	"time"
)

// FileStatus represents a file's position in the processing lifecycle.
type FileStatus string

const (
	FileStatusQueued     FileStatus = "queued"
	FileStatusProcessing FileStatus = "processing"
	FileStatusComplete   FileStatus = "complete"
	FileStatusError      FileStatus = "error"
)

// ValidFileStatus reports whether s is a known lifecycle status.
func ValidFileStatus(s FileStatus) bool {
	switch s {
	case FileStatusQueued, FileStatusProcessing, FileStatusComplete, FileStatusError:
		return true
	}
	return false
}

// FileMetadata holds the processing results persisted when a file completes.
type FileMetadata struct {
	PageCount     int `json:"page_count"`
	IndexedChunks int `json:"indexed_chunks"`
	FailedChunks  int `json:"failed_chunks,omitempty"`
	SkippedChunks int `json:"skipped_chunks,omitempty"`
}

// File represents an uploaded document tracked through the pipeline.
// Status, attempts and metadata are mutated only by the processing state
// machine; the pipeline never deletes files.
type File struct {
	ID            int64
	UserID        string
	FolderID      int64
	Name          string
	BlobPath      string
	MimeType      string
	SizeBytes     int64
	Status        FileStatus
	Attempts      int
	LastAttemptAt *time.Time
	ProcessedAt   *time.Time
	ErrorMessage  string
	Metadata      *FileMetadata
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewFile creates a queued File record for a freshly uploaded blob.
func NewFile(userID string, folderID int64, name, blobPath, mimeType string, sizeBytes int64, createdAt time.Time) *File {
	return &File{
		UserID:    userID,
		FolderID:  folderID,
		Name:      name,
		BlobPath:  blobPath,
		MimeType:  mimeType,
		SizeBytes: sizeBytes,
		Status:    FileStatusQueued,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// ValidateFile validates a File instance before persistence.
func ValidateFile(f *File) error {
	if f == nil {
		return fmt.Errorf("file cannot be nil")
	}

	if f.UserID == "" {
		return fmt.Errorf("file UserID is required")
	}

	if f.Name == "" {
		return fmt.Errorf("file Name is required")
	}

	if f.BlobPath == "" {
		return fmt.Errorf("file BlobPath is required")
	}

	if !ValidFileStatus(f.Status) {
		return ErrInvalidFileStatus
	}

	return nil
}

// Folder groups a user's files.
type Folder struct {
	ID        int64
	UserID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UsageStat accumulates per-user, per-day usage counters.
type UsageStat struct {
	UserID         string
	Date           time.Time
	PagesProcessed int
	QueriesMade    int
	UpdatedAt      time.Time
}
