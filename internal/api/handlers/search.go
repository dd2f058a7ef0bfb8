package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/paperbase/paperbase/internal/api"
	"github.com/paperbase/paperbase/internal/domain"
	"github.com/paperbase/paperbase/internal/service"
)

type RetrieverService interface {
	Search(ctx context.Context, input service.SearchInput) ([]*service.ScoredChunk, error)
}

type ContextService interface {
	GetContext(ctx context.Context, input service.SearchInput) (string, error)
}

type SearchHandler struct {
	retriever  RetrieverService
	contextSvc ContextService
}

func NewSearchHandler(retriever RetrieverService, contextSvc ContextService) *SearchHandler {
	return &SearchHandler{retriever: retriever, contextSvc: contextSvc}
}

type SearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	SourceID string `json:"source_id,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type SearchResultResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category string  `json:"category"`
	SourceID string  `json:"source_id,omitempty"`
	Score    float32 `json:"score"`
}

type SearchResponse struct {
	Results []*SearchResultResponse `json:"results"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.retriever.Search(r.Context(), service.SearchInput{
		Query:    req.Query,
		Category: domain.Category(req.Category),
		SourceID: req.SourceID,
		Limit:    req.Limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*SearchResultResponse, len(results))
	for i, result := range results {
		responses[i] = &SearchResultResponse{
			ID:       result.Chunk.ID,
			Title:    result.Chunk.Title,
			Content:  result.Chunk.Content,
			Category: string(result.Chunk.Category),
			SourceID: result.Chunk.SourceID,
			Score:    result.Score,
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: responses})
}

type ContextRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	SourceID string `json:"source_id,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type ContextResponse struct {
	Context string `json:"context"`
}

func (h *SearchHandler) Context(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contextStr, err := h.contextSvc.GetContext(r.Context(), service.SearchInput{
		Query:    req.Query,
		Category: domain.Category(req.Category),
		SourceID: req.SourceID,
		Limit:    req.Limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ContextResponse{Context: contextStr})
}
