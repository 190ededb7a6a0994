// Package search provides the vector search index backed by Postgres and
// the pgvector extension.
package search

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// Index stores chunk documents and answers similarity queries.
type Index struct {
	pool *pgxpool.Pool
}

func NewIndex(pool *pgxpool.Pool) *Index {
	return &Index{pool: pool}
}

// UploadDocuments upserts documents keyed by chunk_id, so re-processing a
// file overwrites its previous chunks instead of duplicating them. Each
// document gets its own result; a failed insert does not stop the rest.
func (i *Index) UploadDocuments(ctx context.Context, docs []domain.ChunkDocument) ([]domain.UploadResult, error) {
	results := make([]domain.UploadResult, 0, len(docs))

	for _, doc := range docs {
		_, err := i.pool.Exec(ctx,
			`INSERT INTO chunk_documents
				(chunk_id, text_parent_id, chunk, title, header_1, header_2, header_3, content_vector, user_id, updated_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			 ON CONFLICT (chunk_id)
			 DO UPDATE SET
				text_parent_id = EXCLUDED.text_parent_id,
				chunk = EXCLUDED.chunk,
				title = EXCLUDED.title,
				header_1 = EXCLUDED.header_1,
				header_2 = EXCLUDED.header_2,
				header_3 = EXCLUDED.header_3,
				content_vector = EXCLUDED.content_vector,
				user_id = EXCLUDED.user_id,
				updated_at = now()`,
			doc.ChunkID,
			doc.TextParentID,
			doc.Chunk,
			doc.Title,
			doc.Header1,
			doc.Header2,
			doc.Header3,
			pgvector.NewVector(doc.ContentVector),
			doc.UserID,
		)
		result := domain.UploadResult{Key: doc.ChunkID, Succeeded: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	return results, nil
}

// QueryResult is one search hit with its cosine similarity score.
type QueryResult struct {
	ChunkID      string  `json:"chunk_id"`
	TextParentID string  `json:"text_parent_id"`
	Chunk        string  `json:"chunk"`
	Title        string  `json:"title"`
	Header2      string  `json:"header_2"`
	Header3      string  `json:"header_3"`
	Score        float64 `json:"score"`
}

// Query returns the documents closest to the embedding, restricted to one
// user's documents.
func (i *Index) Query(ctx context.Context, userID string, embedding []float32, limit int) ([]*QueryResult, error) {
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(embedding)

	rows, err := i.pool.Query(ctx,
		`SELECT chunk_id, text_parent_id, chunk, title, header_2, header_3,
		        1.0 / (1.0 + (content_vector <=> $1)) AS score
		 FROM chunk_documents
		 WHERE user_id = $2
		 ORDER BY content_vector <=> $1
		 LIMIT $3`,
		vec, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*QueryResult, 0, limit)
	for rows.Next() {
		var r QueryResult
		if err := rows.Scan(&r.ChunkID, &r.TextParentID, &r.Chunk, &r.Title, &r.Header2, &r.Header3, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// DeleteByParent removes every document that belongs to a parent file,
// used when the file itself is deleted.
func (i *Index) DeleteByParent(ctx context.Context, userID, parentID string) (int, error) {
	tag, err := i.pool.Exec(ctx,
		`DELETE FROM chunk_documents WHERE user_id = $1 AND text_parent_id = $2`,
		userID, parentID,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting documents for %s: %w", parentID, err)
	}
	return int(tag.RowsAffected()), nil
}
