package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// QueueRepository is a Postgres-backed processing queue. Messages are
// claimed with SKIP LOCKED so multiple workers never process the same file.
type QueueRepository struct {
	db dbtx
}

func NewQueueRepository(pool *pgxpool.Pool) *QueueRepository {
	return &QueueRepository{db: pool}
}

func NewQueueRepositoryWithTx(tx pgx.Tx) *QueueRepository {
	return &QueueRepository{db: tx}
}

func (r *QueueRepository) Enqueue(ctx context.Context, msg domain.ProcessMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling process message: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO processing_queue (payload, enqueued_at) VALUES ($1, now())`,
		payload,
	)
	return err
}

// Dequeue claims and removes up to limit messages in enqueue order.
func (r *QueueRepository) Dequeue(ctx context.Context, limit int) ([]domain.ProcessMessage, error) {
	if limit <= 0 {
		limit = 1
	}

	rows, err := r.db.Query(ctx,
		`DELETE FROM processing_queue
		 WHERE id IN (
			SELECT id FROM processing_queue
			ORDER BY enqueued_at ASC, id ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING payload`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.ProcessMessage, 0, limit)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var msg domain.ProcessMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, fmt.Errorf("unmarshalling process message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Size reports the number of messages waiting in the queue.
func (r *QueueRepository) Size(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM processing_queue`).Scan(&n)
	return n, err
}
