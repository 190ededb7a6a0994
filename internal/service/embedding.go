package service

import (
	"context"
	"log"
	"time"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingConfig controls pacing and truncation for the embedding stage.
type EmbeddingConfig struct {
	// PacingDelay is the wait inserted before every call after the first,
	// to respect the provider's rate limit.
	PacingDelay time.Duration
	// MaxTextLength is the provider's input limit in characters; longer
	// chunk text is truncated before the request.
	MaxTextLength int
}

// DefaultEmbeddingConfig provides the provider limits used in production.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		PacingDelay:   2 * time.Second,
		MaxTextLength: 8000,
	}
}

// EmbeddingStage attaches embedding vectors to chunks, calling the provider
// strictly sequentially.
type EmbeddingStage struct {
	client EmbeddingClient
	cfg    EmbeddingConfig
}

// NewEmbeddingStage creates an EmbeddingStage.
func NewEmbeddingStage(client EmbeddingClient, cfg EmbeddingConfig) *EmbeddingStage {
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultEmbeddingConfig().MaxTextLength
	}
	return &EmbeddingStage{client: client, cfg: cfg}
}

// EmbedChunks requests one embedding per chunk in sequence. A chunk whose
// request fails is logged and dropped; the stage never aborts the batch.
// Returns the chunks that received vectors and the count of skipped chunks.
func (s *EmbeddingStage) EmbedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, int, error) {
	embedded := make([]domain.Chunk, 0, len(chunks))
	skipped := 0

	for i, chunk := range chunks {
		if i > 0 && s.cfg.PacingDelay > 0 {
			select {
			case <-ctx.Done():
				return embedded, skipped, ctx.Err()
			case <-time.After(s.cfg.PacingDelay):
			}
		}

		text := truncateRunes(chunk.Text, s.cfg.MaxTextLength)
		if len(text) != len(chunk.Text) {
			log.Printf("chunk %s text too long (%d chars), truncating to %d", chunk.ID, len(chunk.Text), s.cfg.MaxTextLength)
		}

		vector, err := s.client.GenerateEmbedding(ctx, text)
		if err != nil {
			log.Printf("embedding failed for chunk %s, skipping: %v", chunk.ID, err)
			skipped++
			continue
		}

		chunk.Embedding = vector
		embedded = append(embedded, chunk)
	}

	return embedded, skipped, nil
}

// truncateRunes shortens s to at most max runes without splitting a rune.
func truncateRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
