package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// FileRequeuer moves an errored file back into the processing queue. The
// status flip and the queue insert run in one transaction, so a file can
// never end up queued without a pending message (or the other way around).
type FileRequeuer struct {
	pool *pgxpool.Pool
}

func NewFileRequeuer(pool *pgxpool.Pool) *FileRequeuer {
	return &FileRequeuer{pool: pool}
}

// Requeue flips the file to queued with an audit message and enqueues msg.
func (r *FileRequeuer) Requeue(ctx context.Context, id int64, message string, msg domain.ProcessMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning requeue transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := NewFileRepositoryWithTx(tx).Requeue(ctx, id, message); err != nil {
		return err
	}
	if err := NewQueueRepositoryWithTx(tx).Enqueue(ctx, msg); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
