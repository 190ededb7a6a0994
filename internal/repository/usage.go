package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// UsageRepository accumulates per-user daily usage counters.
type UsageRepository struct {
	db dbtx
}

func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: pool}
}

func (r *UsageRepository) AddPagesProcessed(ctx context.Context, userID string, pages int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO usage_stats (user_id, date, pages_processed, queries_made, updated_at)
		 VALUES ($1, CURRENT_DATE, $2, 0, now())
		 ON CONFLICT (user_id, date)
		 DO UPDATE SET pages_processed = usage_stats.pages_processed + EXCLUDED.pages_processed, updated_at = now()`,
		userID, pages,
	)
	return err
}

func (r *UsageRepository) AddQueriesMade(ctx context.Context, userID string, queries int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO usage_stats (user_id, date, pages_processed, queries_made, updated_at)
		 VALUES ($1, CURRENT_DATE, 0, $2, now())
		 ON CONFLICT (user_id, date)
		 DO UPDATE SET queries_made = usage_stats.queries_made + EXCLUDED.queries_made, updated_at = now()`,
		userID, queries,
	)
	return err
}

func (r *UsageRepository) GetByUser(ctx context.Context, userID string) ([]*domain.UsageStat, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, date, pages_processed, queries_made, updated_at
		 FROM usage_stats WHERE user_id = $1 ORDER BY date DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]*domain.UsageStat, 0)
	for rows.Next() {
		var s domain.UsageStat
		if err := rows.Scan(&s.UserID, &s.Date, &s.PagesProcessed, &s.QueriesMade, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}
