package service

import (
	"context"
	"fmt"
	"strings"
)

// BuildContext formats ranked search results into a single context string
// for the downstream question-answering consumer: a deterministic numbered
// enumeration of each result's title and content. Empty input produces an
// empty string. Pure function, no side effects.
func BuildContext(results []*ScoredChunk) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n%s", i+1, r.Chunk.Title, r.Chunk.Content)
	}
	return b.String()
}

// ContextService answers "give me context for this query" by searching and
// assembling the ranked chunks into one bounded string.
type ContextService struct {
	retriever *RetrieverService
}

// NewContextService creates a new ContextService instance
func NewContextService(retriever *RetrieverService) *ContextService {
	return &ContextService{retriever: retriever}
}

// GetContext searches for the query and builds the context string. The
// result length is bounded through the search limit.
func (s *ContextService) GetContext(ctx context.Context, input SearchInput) (string, error) {
	results, err := s.retriever.Search(ctx, input)
	if err != nil {
		return "", err
	}
	return BuildContext(results), nil
}
