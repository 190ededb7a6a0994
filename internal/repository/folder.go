package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

type FolderRepository struct {
	db dbtx
}

func NewFolderRepository(pool *pgxpool.Pool) *FolderRepository {
	return &FolderRepository{db: pool}
}

func (r *FolderRepository) Create(ctx context.Context, f *domain.Folder) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO folders (user_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		f.UserID, f.Name, f.CreatedAt, f.UpdatedAt,
	).Scan(&f.ID)
}

func (r *FolderRepository) GetByID(ctx context.Context, id int64, userID string) (*domain.Folder, error) {
	var f domain.Folder
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name, created_at, updated_at
		 FROM folders WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFolderNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FolderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Folder, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, created_at, updated_at
		 FROM folders WHERE user_id = $1 ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := make([]*domain.Folder, 0)
	for rows.Next() {
		var f domain.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		folders = append(folders, &f)
	}
	return folders, rows.Err()
}

func (r *FolderRepository) Rename(ctx context.Context, id int64, userID, name string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE folders SET name = $3, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID, name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFolderNotFound
	}
	return nil
}

// Delete removes a folder. Files in the folder are detached, not deleted.
func (r *FolderRepository) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM folders WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFolderNotFound
	}
	return nil
}
