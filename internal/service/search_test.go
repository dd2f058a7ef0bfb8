package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paperbase/paperbase/internal/domain"
)

// MockSearchRepository is a mock implementation of SearchRepositoryInterface
type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) ListEmbedded(ctx context.Context, filter ChunkFilter) ([]*domain.KnowledgeChunk, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeChunk), args.Error(1)
}

func (m *MockSearchRepository) SearchText(ctx context.Context, query string, filter ChunkFilter, limit int) ([]*ScoredChunk, error) {
	args := m.Called(ctx, query, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ScoredChunk), args.Error(1)
}

func TestRetrieverService_Search_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewRetrieverService(new(MockSearchRepository), nil)

	_, err := svc.Search(ctx, SearchInput{Query: "   "})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)

	_, err = svc.Search(ctx, SearchInput{Query: "taxes", Category: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestRetrieverService_Search_RanksByCosineSimilarity(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSearchRepository)
	mockEmbedder := new(MockEmbeddingClient)
	svc := NewRetrieverService(mockRepo, mockEmbedder)

	mockEmbedder.On("GenerateEmbedding", mock.Anything, "tax deadline").
		Return([]float32{1, 0}, nil)
	mockRepo.On("ListEmbedded", mock.Anything, ChunkFilter{}).
		Return([]*domain.KnowledgeChunk{
			{ID: "orthogonal", Embedding: []float32{0, 1}},
			{ID: "exact", Embedding: []float32{1, 0}},
			{ID: "close", Embedding: []float32{0.9, 0.1}},
		}, nil)

	results, err := svc.Search(ctx, SearchInput{Query: "tax deadline"})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].Chunk.ID)
	assert.Equal(t, "close", results[1].Chunk.ID)
	assert.Equal(t, "orthogonal", results[2].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
	assert.InDelta(t, 0.0, results[2].Score, 0.001)
	mockRepo.AssertNotCalled(t, "SearchText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRetrieverService_Search_LimitsResults(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSearchRepository)
	mockEmbedder := new(MockEmbeddingClient)
	svc := NewRetrieverService(mockRepo, mockEmbedder)

	candidates := []*domain.KnowledgeChunk{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0.9, 0.1}},
		{ID: "c", Embedding: []float32{0.8, 0.2}},
		{ID: "d", Embedding: []float32{0.7, 0.3}},
	}
	mockEmbedder.On("GenerateEmbedding", mock.Anything, mock.Anything).
		Return([]float32{1, 0}, nil)
	mockRepo.On("ListEmbedded", mock.Anything, mock.Anything).Return(candidates, nil)

	results, err := svc.Search(ctx, SearchInput{Query: "anything", Limit: 2})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrieverService_Search_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSearchRepository)
	svc := NewRetrieverService(mockRepo, nil)

	mockRepo.On("SearchText", mock.Anything, "anything", ChunkFilter{}, DefaultSearchLimit).
		Return([]*ScoredChunk{}, nil)

	_, err := svc.Search(ctx, SearchInput{Query: "anything"})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestRetrieverService_Search_CapsLimit(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSearchRepository)
	svc := NewRetrieverService(mockRepo, nil)

	mockRepo.On("SearchText", mock.Anything, "anything", ChunkFilter{}, MaxSearchLimit).
		Return([]*ScoredChunk{}, nil)

	_, err := svc.Search(ctx, SearchInput{Query: "anything", Limit: 500})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestRetrieverService_Search_NilEmbedderUsesTextSearch(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSearchRepository)
	svc := NewRetrieverService(mockRepo, nil)

	expected := []*ScoredChunk{{Chunk: &domain.KnowledgeChunk{ID: "t-1"}, Score: 0.5}}
	mockRepo.On("SearchText", mock.Anything, "taxes", ChunkFilter{}, DefaultSearchLimit).
		Return(expected, nil)

	results, err := svc.Search(ctx, SearchInput{Query: "taxes"})

	require.NoError(t, err)
	assert.Equal(t, expected, results)
	mockRepo.AssertNotCalled(t, "ListEmbedded", mock.Anything, mock.Anything)
}

func TestRetrieverService_Search_EmbeddingFailureFallsBackToTextSearch(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSearchRepository)
	mockEmbedder := new(MockEmbeddingClient)
	svc := NewRetrieverService(mockRepo, mockEmbedder)

	mockEmbedder.On("GenerateEmbedding", mock.Anything, "taxes").
		Return(nil, errors.New("api unavailable"))
	expected := []*ScoredChunk{{Chunk: &domain.KnowledgeChunk{ID: "t-1"}, Score: 0.4}}
	mockRepo.On("SearchText", mock.Anything, "taxes", ChunkFilter{}, DefaultSearchLimit).
		Return(expected, nil)

	results, err := svc.Search(ctx, SearchInput{Query: "taxes"})

	require.NoError(t, err)
	assert.Equal(t, expected, results)
	mockRepo.AssertNotCalled(t, "ListEmbedded", mock.Anything, mock.Anything)
}

func TestRetrieverService_Search_EmptyVectorResultsFallBackToTextSearch(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSearchRepository)
	mockEmbedder := new(MockEmbeddingClient)
	svc := NewRetrieverService(mockRepo, mockEmbedder)

	mockEmbedder.On("GenerateEmbedding", mock.Anything, "taxes").
		Return([]float32{1, 0}, nil)
	mockRepo.On("ListEmbedded", mock.Anything, ChunkFilter{}).
		Return([]*domain.KnowledgeChunk{}, nil)
	expected := []*ScoredChunk{{Chunk: &domain.KnowledgeChunk{ID: "t-1"}, Score: 0.4}}
	mockRepo.On("SearchText", mock.Anything, "taxes", ChunkFilter{}, DefaultSearchLimit).
		Return(expected, nil)

	results, err := svc.Search(ctx, SearchInput{Query: "taxes"})

	require.NoError(t, err)
	assert.Equal(t, expected, results)
	mockRepo.AssertExpectations(t)
}

func TestRetrieverService_Search_PassesFilterThrough(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSearchRepository)
	svc := NewRetrieverService(mockRepo, nil)

	filter := ChunkFilter{Category: domain.CategoryFinance, SourceID: "doc-1"}
	mockRepo.On("SearchText", mock.Anything, "invoices", filter, DefaultSearchLimit).
		Return([]*ScoredChunk{}, nil)

	_, err := svc.Search(ctx, SearchInput{
		Query:    "invoices",
		Category: domain.CategoryFinance,
		SourceID: "doc-1",
	})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestRetrieverService_Search_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSearchRepository)
	mockEmbedder := new(MockEmbeddingClient)
	svc := NewRetrieverService(mockRepo, mockEmbedder)

	mockEmbedder.On("GenerateEmbedding", mock.Anything, "taxes").
		Return([]float32{1, 0}, nil)
	mockRepo.On("ListEmbedded", mock.Anything, mock.Anything).
		Return(nil, errors.New("query failed"))

	_, err := svc.Search(ctx, SearchInput{Query: "taxes"})
	assert.Error(t, err)
}
