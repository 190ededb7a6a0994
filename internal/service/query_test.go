package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ocrlab-io/ocrlab/internal/domain"
	"github.com/ocrlab-io/ocrlab/internal/search"
)

type mockQueryIndex struct {
	mock.Mock
}

func (m *mockQueryIndex) Query(ctx context.Context, userID string, embedding []float32, limit int) ([]*search.QueryResult, error) {
	args := m.Called(ctx, userID, embedding, limit)
	if results := args.Get(0); results != nil {
		return results.([]*search.QueryResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUsageWriter struct {
	mock.Mock
}

func (m *mockUsageWriter) AddQueriesMade(ctx context.Context, userID string, queries int) error {
	return m.Called(ctx, userID, queries).Error(0)
}

func TestQuery_Success(t *testing.T) {
	index := new(mockQueryIndex)
	usage := new(mockUsageWriter)
	embedder := &stubEmbedder{fn: func(text string) ([]float32, error) {
		return []float32{0.1, 0.2}, nil
	}}

	expected := []*search.QueryResult{{ChunkID: "file_1_chunk_0", Chunk: "matching text", Score: 0.93}}
	index.On("Query", mock.Anything, "user1", []float32{0.1, 0.2}, 10).Return(expected, nil)
	usage.On("AddQueriesMade", mock.Anything, "user1", 1).Return(nil)

	svc := NewQueryService(embedder, index, usage)
	results, err := svc.Query(context.Background(), "user1", "quarterly results", 10)

	require.NoError(t, err)
	assert.Equal(t, expected, results)
	assert.Equal(t, []string{"quarterly results"}, embedder.texts)
	index.AssertExpectations(t)
	usage.AssertExpectations(t)
}

func TestQuery_EmptyQueryRejected(t *testing.T) {
	svc := NewQueryService(&stubEmbedder{}, new(mockQueryIndex), new(mockUsageWriter))

	_, err := svc.Query(context.Background(), "user1", "", 10)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestQuery_EmbeddingFailure(t *testing.T) {
	embedder := &stubEmbedder{fn: func(text string) ([]float32, error) {
		return nil, errors.New("quota exceeded")
	}}
	index := new(mockQueryIndex)

	svc := NewQueryService(embedder, index, new(mockUsageWriter))
	_, err := svc.Query(context.Background(), "user1", "anything", 10)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeTransientProvider, domainErr.Code)
	index.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQuery_UsageFailureIsNotFatal(t *testing.T) {
	index := new(mockQueryIndex)
	usage := new(mockUsageWriter)

	index.On("Query", mock.Anything, "user1", mock.Anything, 5).Return([]*search.QueryResult{}, nil)
	usage.On("AddQueriesMade", mock.Anything, "user1", 1).Return(errors.New("db timeout"))

	svc := NewQueryService(&stubEmbedder{}, index, usage)
	results, err := svc.Query(context.Background(), "user1", "text", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
	usage.AssertExpectations(t)
}
