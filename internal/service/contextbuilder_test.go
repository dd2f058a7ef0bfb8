package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paperbase/paperbase/internal/domain"
)

func TestBuildContext_EmptyResults(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
	assert.Equal(t, "", BuildContext([]*ScoredChunk{}))
}

func TestBuildContext_SingleResult(t *testing.T) {
	results := []*ScoredChunk{
		{Chunk: &domain.KnowledgeChunk{Title: "Tax Guide", Content: "File by the end of March."}, Score: 0.9},
	}

	assert.Equal(t, "[1] Tax Guide\nFile by the end of March.", BuildContext(results))
}

func TestBuildContext_NumbersResultsInOrder(t *testing.T) {
	results := []*ScoredChunk{
		{Chunk: &domain.KnowledgeChunk{Title: "First", Content: "Content one."}, Score: 0.9},
		{Chunk: &domain.KnowledgeChunk{Title: "Second", Content: "Content two."}, Score: 0.5},
		{Chunk: &domain.KnowledgeChunk{Title: "Third", Content: "Content three."}, Score: 0.1},
	}

	expected := "[1] First\nContent one.\n\n[2] Second\nContent two.\n\n[3] Third\nContent three."
	assert.Equal(t, expected, BuildContext(results))
}

func TestContextService_GetContext(t *testing.T) {
	ctx := context.Background()

	t.Run("assembles search results", func(t *testing.T) {
		mockRepo := new(MockSearchRepository)
		retriever := NewRetrieverService(mockRepo, nil)
		svc := NewContextService(retriever)

		mockRepo.On("SearchText", mock.Anything, "deadlines", ChunkFilter{}, DefaultSearchLimit).
			Return([]*ScoredChunk{
				{Chunk: &domain.KnowledgeChunk{Title: "Tax Guide", Content: "File by March."}, Score: 0.8},
			}, nil)

		result, err := svc.GetContext(ctx, SearchInput{Query: "deadlines"})

		require.NoError(t, err)
		assert.Equal(t, "[1] Tax Guide\nFile by March.", result)
	})

	t.Run("no matches yields empty context", func(t *testing.T) {
		mockRepo := new(MockSearchRepository)
		svc := NewContextService(NewRetrieverService(mockRepo, nil))

		mockRepo.On("SearchText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]*ScoredChunk{}, nil)

		result, err := svc.GetContext(ctx, SearchInput{Query: "nothing matches"})

		require.NoError(t, err)
		assert.Equal(t, "", result)
	})

	t.Run("search errors propagate", func(t *testing.T) {
		svc := NewContextService(NewRetrieverService(new(MockSearchRepository), nil))

		_, err := svc.GetContext(ctx, SearchInput{Query: ""})
		assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	})
}
