package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	file := NewFile("user1", 3, "scan.pdf", "user1/abc/scan.pdf", "application/pdf", 1024, createdAt)

	assert.Equal(t, "user1", file.UserID)
	assert.Equal(t, int64(3), file.FolderID)
	assert.Equal(t, FileStatusQueued, file.Status)
	assert.Equal(t, 0, file.Attempts)
	assert.Equal(t, createdAt, file.CreatedAt)
	assert.Equal(t, createdAt, file.UpdatedAt)
	assert.Nil(t, file.Metadata)
}

func TestValidateFile(t *testing.T) {
	valid := NewFile("user1", 0, "scan.pdf", "user1/abc/scan.pdf", "application/pdf", 1024, time.Now())
	require.NoError(t, ValidateFile(valid))

	assert.Error(t, ValidateFile(nil))

	missingUser := *valid
	missingUser.UserID = ""
	assert.Error(t, ValidateFile(&missingUser))

	missingName := *valid
	missingName.Name = ""
	assert.Error(t, ValidateFile(&missingName))

	missingBlob := *valid
	missingBlob.BlobPath = ""
	assert.Error(t, ValidateFile(&missingBlob))

	badStatus := *valid
	badStatus.Status = FileStatus("archived")
	assert.ErrorIs(t, ValidateFile(&badStatus), ErrInvalidFileStatus)
}

func TestValidFileStatus(t *testing.T) {
	assert.True(t, ValidFileStatus(FileStatusQueued))
	assert.True(t, ValidFileStatus(FileStatusProcessing))
	assert.True(t, ValidFileStatus(FileStatusComplete))
	assert.True(t, ValidFileStatus(FileStatusError))
	assert.False(t, ValidFileStatus(FileStatus("done")))
	assert.False(t, ValidFileStatus(FileStatus("")))
}

func TestDomainError(t *testing.T) {
	plain := NewDomainError(ErrCodeNotFound, "file not found")
	assert.Equal(t, "[NOT_FOUND] file not found", plain.Error())
	assert.Nil(t, plain.Unwrap())

	cause := assert.AnError
	wrapped := NewDomainErrorWithCause(ErrCodeTransientProvider, "embedding call failed", cause)
	assert.Contains(t, wrapped.Error(), "embedding call failed")
	assert.ErrorIs(t, wrapped, cause)
}
