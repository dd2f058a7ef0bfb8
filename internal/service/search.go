package service

import (
	"context"
	"sort"
	"strings"

	"github.com/paperbase/paperbase/internal/domain"
)

const (
	// DefaultSearchLimit is the number of results returned when the caller
	// does not specify one.
	DefaultSearchLimit = 3
	// MaxSearchLimit caps the result count regardless of caller input.
	MaxSearchLimit = 20
)

// ChunkFilter narrows retrieval to a category and/or source document.
type ChunkFilter struct {
	Category domain.Category
	SourceID string
}

// ScoredChunk pairs a chunk with its relevance score for the query.
type ScoredChunk struct {
	Chunk *domain.KnowledgeChunk
	Score float32
}

// SearchInput represents input for the search operation.
type SearchInput struct {
	Query    string
	Category domain.Category
	SourceID string
	Limit    int
}

// SearchRepositoryInterface defines the repository interface for retrieval.
type SearchRepositoryInterface interface {
	// ListEmbedded returns chunks matching the filter that carry an
	// embedding, in deterministic (source, chunk index) order.
	ListEmbedded(ctx context.Context, filter ChunkFilter) ([]*domain.KnowledgeChunk, error)
	// SearchText runs the store's native text search over the filtered
	// set, ranked by text relevance.
	SearchText(ctx context.Context, query string, filter ChunkFilter, limit int) ([]*ScoredChunk, error)
}

// RetrieverService serves relevance-ranked chunks using vector similarity
// with fallback to text search when the embedding client fails or the
// vector path finds nothing.
type RetrieverService struct {
	repo     SearchRepositoryInterface
	embedder EmbeddingClient
}

// NewRetrieverService creates a new RetrieverService instance. A nil
// embedder forces the text-search path for every query.
func NewRetrieverService(repo SearchRepositoryInterface, embedder EmbeddingClient) *RetrieverService {
	return &RetrieverService{repo: repo, embedder: embedder}
}

// Search returns up to Limit chunks ranked by descending relevance. An
// empty query is the only synchronous validation failure; no matches is an
// empty result, not an error.
func (s *RetrieverService) Search(ctx context.Context, input SearchInput) ([]*ScoredChunk, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if input.Category != "" && !domain.IsValidCategory(input.Category) {
		return nil, domain.ErrInvalidCategory
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	filter := ChunkFilter{Category: input.Category, SourceID: input.SourceID}

	if s.embedder != nil {
		if queryVec, err := s.embedder.GenerateEmbedding(ctx, query); err == nil {
			results, err := s.searchByVector(ctx, queryVec, filter, limit)
			if err != nil {
				return nil, err
			}
			if len(results) > 0 {
				return results, nil
			}
			// Zero vector results: fall through to text search.
		}
	}

	results, err := s.repo.SearchText(ctx, query, filter, limit)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// searchByVector ranks embedded chunks by cosine similarity to the query
// vector. The stable sort keeps the repository's deterministic listing
// order on score ties.
func (s *RetrieverService) searchByVector(ctx context.Context, queryVec []float32, filter ChunkFilter, limit int) ([]*ScoredChunk, error) {
	candidates, err := s.repo.ListEmbedded(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	results := make([]*ScoredChunk, 0, len(candidates))
	for _, chunk := range candidates {
		results = append(results, &ScoredChunk{
			Chunk: chunk,
			Score: domain.CosineSimilarity(queryVec, chunk.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
