package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// FileStore is the full file persistence surface used by the file service.
type FileStore interface {
	Create(ctx context.Context, f *domain.File) error
	GetByIDForUser(ctx context.Context, id int64, userID string) (*domain.File, error)
	ListByUser(ctx context.Context, userID string, folderID int64) ([]*domain.File, error)
	Delete(ctx context.Context, id int64, userID string) error
	ResetAttempts(ctx context.Context, id int64) error
}

// FolderStore looks up folders for upload validation.
type FolderStore interface {
	GetByID(ctx context.Context, id int64, userID string) (*domain.Folder, error)
}

// BlobWriter is the blob storage surface used by the file service.
type BlobWriter interface {
	UploadObject(ctx context.Context, key, contentType string, content []byte) error
	DeleteObject(ctx context.Context, key string) error
}

// IndexCleaner removes a deleted file's documents from the search index.
type IndexCleaner interface {
	DeleteByParent(ctx context.Context, userID, parentID string) (int, error)
}

// FileService handles upload, listing, deletion and manual retry of files.
type FileService struct {
	files   FileStore
	folders FolderStore
	blobs   BlobWriter
	index   IndexCleaner
	queue   QueueWriter
	requeue Requeuer
}

func NewFileService(files FileStore, folders FolderStore, blobs BlobWriter, index IndexCleaner, queue QueueWriter, requeue Requeuer) *FileService {
	return &FileService{
		files:   files,
		folders: folders,
		blobs:   blobs,
		index:   index,
		queue:   queue,
		requeue: requeue,
	}
}

// UploadInput carries a file upload.
type UploadInput struct {
	UserID   string
	FolderID int64
	Name     string
	MimeType string
	Content  []byte
}

// Upload stores the blob, records the file as queued and enqueues it for
// processing.
func (s *FileService) Upload(ctx context.Context, input UploadInput) (*domain.File, error) {
	if input.FolderID != 0 {
		if _, err := s.folders.GetByID(ctx, input.FolderID, input.UserID); err != nil {
			return nil, err
		}
	}

	blobPath := fmt.Sprintf("%s/%s/%s", input.UserID, uuid.NewString(), input.Name)
	if err := s.blobs.UploadObject(ctx, blobPath, input.MimeType, input.Content); err != nil {
		return nil, fmt.Errorf("storing upload: %w", err)
	}

	file := domain.NewFile(input.UserID, input.FolderID, input.Name, blobPath, input.MimeType, int64(len(input.Content)), time.Now().UTC())
	if err := domain.ValidateFile(file); err != nil {
		return nil, err
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("recording file: %w", err)
	}

	msg := domain.ProcessMessage{
		FileID:   file.ID,
		UserID:   file.UserID,
		BlobPath: file.BlobPath,
	}
	if err := s.queue.Enqueue(ctx, msg); err != nil {
		return nil, fmt.Errorf("enqueueing file %d: %w", file.ID, err)
	}

	return file, nil
}

func (s *FileService) Get(ctx context.Context, userID string, id int64) (*domain.File, error) {
	return s.files.GetByIDForUser(ctx, id, userID)
}

func (s *FileService) List(ctx context.Context, userID string, folderID int64) ([]*domain.File, error) {
	return s.files.ListByUser(ctx, userID, folderID)
}

// Delete removes the file record, its blob and its index documents. The
// record is removed first so the file disappears from listings even when
// blob or index cleanup fails.
func (s *FileService) Delete(ctx context.Context, userID string, id int64) error {
	file, err := s.files.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.files.Delete(ctx, id, userID); err != nil {
		return err
	}

	if err := s.blobs.DeleteObject(ctx, file.BlobPath); err != nil {
		log.Printf("deleting blob %s for file %d failed: %v", file.BlobPath, id, err)
	}

	parentID := fmt.Sprintf("file_%d", id)
	if _, err := s.index.DeleteByParent(ctx, userID, parentID); err != nil {
		log.Printf("deleting index documents for file %d failed: %v", id, err)
	}

	return nil
}

// Retry manually requeues an errored file. Unlike the automatic retry sweep
// it also clears the attempt counter, so a user can keep retrying a file
// that exhausted its automatic attempts.
func (s *FileService) Retry(ctx context.Context, userID string, id int64) (*domain.File, error) {
	file, err := s.files.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if file.Status != domain.FileStatusError {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidOperation, "only errored files can be retried")
	}

	if err := s.files.ResetAttempts(ctx, id); err != nil {
		return nil, err
	}

	msg := domain.ProcessMessage{
		FileID:   file.ID,
		UserID:   file.UserID,
		BlobPath: file.BlobPath,
		Retry:    true,
	}
	if err := s.requeue.Requeue(ctx, id, "manual retry", msg); err != nil {
		return nil, fmt.Errorf("requeueing file %d: %w", id, err)
	}

	return s.files.GetByIDForUser(ctx, id, userID)
}
