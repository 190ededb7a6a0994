package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

type stubEmbedder struct {
	fn    func(text string) ([]float32, error)
	texts []string
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	s.texts = append(s.texts, text)
	if s.fn != nil {
		return s.fn(text)
	}
	return []float32{1, 2, 3}, nil
}

func makeChunks(texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{ID: "c" + string(rune('0'+i)), Text: text}
	}
	return chunks
}

func TestEmbedChunks_AttachesVectors(t *testing.T) {
	embedder := &stubEmbedder{}
	stage := NewEmbeddingStage(embedder, EmbeddingConfig{MaxTextLength: 8000})

	embedded, skipped, err := stage.EmbedChunks(context.Background(), makeChunks("one", "two"))

	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, embedded, 2)
	assert.Equal(t, []float32{1, 2, 3}, embedded[0].Embedding)
	assert.Equal(t, []string{"one", "two"}, embedder.texts)
}

func TestEmbedChunks_SkipsFailedChunk(t *testing.T) {
	embedder := &stubEmbedder{fn: func(text string) ([]float32, error) {
		if text == "bad" {
			return nil, errors.New("rate limited")
		}
		return []float32{1}, nil
	}}
	stage := NewEmbeddingStage(embedder, EmbeddingConfig{MaxTextLength: 8000})

	embedded, skipped, err := stage.EmbedChunks(context.Background(), makeChunks("a", "b", "bad", "d", "e"))

	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, embedded, 4)
	for _, chunk := range embedded {
		assert.NotEqual(t, "bad", chunk.Text)
	}
}

func TestEmbedChunks_TruncatesLongText(t *testing.T) {
	embedder := &stubEmbedder{}
	stage := NewEmbeddingStage(embedder, EmbeddingConfig{MaxTextLength: 8000})

	_, _, err := stage.EmbedChunks(context.Background(), makeChunks(strings.Repeat("x", 9000)))

	require.NoError(t, err)
	require.Len(t, embedder.texts, 1)
	assert.Equal(t, 8000, len([]rune(embedder.texts[0])))
}

func TestEmbedChunks_ContextCancellation(t *testing.T) {
	embedder := &stubEmbedder{}
	stage := NewEmbeddingStage(embedder, EmbeddingConfig{PacingDelay: time.Hour, MaxTextLength: 8000})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	embedded, skipped, err := stage.EmbedChunks(ctx, makeChunks("one", "two"))

	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, embedded, 1)
	assert.Zero(t, skipped)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "éé", truncateRunes("ééé", 2))
	assert.Equal(t, "", truncateRunes("", 5))
}
