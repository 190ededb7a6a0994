package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

const fileColumns = `id, user_id, folder_id, name, blob_path, mime_type, size_bytes,
	 status, attempts, last_attempt_at, processed_at, error_message, metadata, created_at, updated_at`

type FileRepository struct {
	db dbtx
}

func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: pool}
}

func NewFileRepositoryWithTx(tx pgx.Tx) *FileRepository {
	return &FileRepository{db: tx}
}

func (r *FileRepository) Create(ctx context.Context, f *domain.File) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO files (user_id, folder_id, name, blob_path, mime_type, size_bytes, status, attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		f.UserID, nullableID(f.FolderID), f.Name, f.BlobPath, f.MimeType, f.SizeBytes, f.Status, f.Attempts, f.CreatedAt, f.UpdatedAt,
	).Scan(&f.ID)
}

func (r *FileRepository) GetByID(ctx context.Context, id int64) (*domain.File, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`,
		id,
	)
	return scanFile(row)
}

// GetByIDForUser loads a file only if it belongs to the given user.
func (r *FileRepository) GetByIDForUser(ctx context.Context, id int64, userID string) (*domain.File, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	return scanFile(row)
}

func (r *FileRepository) ListByUser(ctx context.Context, userID string, folderID int64) ([]*domain.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE user_id = $1`
	args := []interface{}{userID}

	if folderID != 0 {
		query += " AND folder_id = $2"
		args = append(args, folderID)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFileRows(rows)
}

func (r *FileRepository) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// MarkProcessing transitions the file to processing and counts the attempt.
// The increment is done in SQL so concurrent workers never lose an attempt.
func (r *FileRepository) MarkProcessing(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE files
		 SET status = $2, attempts = attempts + 1, last_attempt_at = now(), error_message = '', updated_at = now()
		 WHERE id = $1`,
		id, domain.FileStatusProcessing,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

func (r *FileRepository) MarkComplete(ctx context.Context, id int64, metadata *domain.FileMetadata) error {
	var meta []byte
	if metadata != nil {
		var err error
		meta, err = json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshalling file metadata: %w", err)
		}
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE files
		 SET status = $2, processed_at = now(), error_message = '', metadata = $3, updated_at = now()
		 WHERE id = $1`,
		id, domain.FileStatusComplete, meta,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

func (r *FileRepository) MarkError(ctx context.Context, id int64, message string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE files SET status = $2, error_message = $3, updated_at = now() WHERE id = $1`,
		id, domain.FileStatusError, message,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// GetFailedFiles returns errored files that are still within the retry
// policy: fewer than maxAttempts attempts and created after cutoff. Files
// created before the cutoff are abandoned regardless of when they last ran.
func (r *FileRepository) GetFailedFiles(ctx context.Context, maxAttempts int, cutoff time.Time) ([]*domain.File, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fileColumns+`
		 FROM files
		 WHERE status = $1 AND attempts < $2 AND created_at > $3
		 ORDER BY created_at ASC`,
		domain.FileStatusError, maxAttempts, cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFileRows(rows)
}

// Requeue moves an errored file back to queued, keeping the audit message.
func (r *FileRepository) Requeue(ctx context.Context, id int64, message string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE files SET status = $2, error_message = $3, updated_at = now() WHERE id = $1`,
		id, domain.FileStatusQueued, message,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// ResetAttempts clears the attempt counter, used when a user manually
// retries a file that already exhausted its automatic retries.
func (r *FileRepository) ResetAttempts(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE files SET attempts = 0, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

func scanFile(row pgx.Row) (*domain.File, error) {
	var f domain.File
	var folderID *int64
	var errorMessage *string
	var meta []byte
	err := row.Scan(
		&f.ID, &f.UserID, &folderID, &f.Name, &f.BlobPath, &f.MimeType, &f.SizeBytes,
		&f.Status, &f.Attempts, &f.LastAttemptAt, &f.ProcessedAt, &errorMessage, &meta, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	if folderID != nil {
		f.FolderID = *folderID
	}
	if errorMessage != nil {
		f.ErrorMessage = *errorMessage
	}
	if len(meta) > 0 {
		var m domain.FileMetadata
		if err := json.Unmarshal(meta, &m); err != nil {
			return nil, fmt.Errorf("unmarshalling file metadata: %w", err)
		}
		f.Metadata = &m
	}
	return &f, nil
}

func scanFileRows(rows pgx.Rows) ([]*domain.File, error) {
	files := make([]*domain.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
