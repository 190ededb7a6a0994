package service

import (
	"context"
	"fmt"
	"log"

	"github.com/ocrlab-io/ocrlab/internal/domain"
	"github.com/ocrlab-io/ocrlab/internal/search"
)

// QueryIndex answers similarity queries against the search index.
type QueryIndex interface {
	Query(ctx context.Context, userID string, embedding []float32, limit int) ([]*search.QueryResult, error)
}

// UsageWriter records query usage.
type UsageWriter interface {
	AddQueriesMade(ctx context.Context, userID string, queries int) error
}

// QueryService embeds a query string and searches the caller's documents.
type QueryService struct {
	embedder EmbeddingClient
	index    QueryIndex
	usage    UsageWriter
}

func NewQueryService(embedder EmbeddingClient, index QueryIndex, usage UsageWriter) *QueryService {
	return &QueryService{embedder: embedder, index: index, usage: usage}
}

// Query returns the chunks most similar to the query text, restricted to
// the user's own documents.
func (s *QueryService) Query(ctx context.Context, userID, query string, limit int) ([]*search.QueryResult, error) {
	if query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query cannot be empty")
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, domain.NewTransientProviderError("embedding", err)
	}

	results, err := s.index.Query(ctx, userID, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	if err := s.usage.AddQueriesMade(ctx, userID, 1); err != nil {
		log.Printf("recording query usage for user %s failed: %v", userID, err)
	}

	return results, nil
}
