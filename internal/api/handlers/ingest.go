package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paperbase/paperbase/internal/api"
	"github.com/paperbase/paperbase/internal/service"
)

type IngestionService interface {
	IngestDocument(ctx context.Context, sourceID string, force bool) (*service.IngestResult, error)
	IngestAllPending(ctx context.Context) (*service.BatchResult, error)
}

type ChunkStoreService interface {
	Status(ctx context.Context, sourceID string) (*service.SourceStatus, error)
	DeleteBySource(ctx context.Context, sourceID string) (int, error)
}

type IngestHandler struct {
	ingestion IngestionService
	store     ChunkStoreService
}

func NewIngestHandler(ingestion IngestionService, store ChunkStoreService) *IngestHandler {
	return &IngestHandler{ingestion: ingestion, store: store}
}

type IngestResponse struct {
	Status        string `json:"status"`
	ChunksCreated int    `json:"chunks_created"`
	Error         string `json:"error,omitempty"`
}

func ingestToResponse(result *service.IngestResult) *IngestResponse {
	return &IngestResponse{
		Status:        string(result.Status),
		ChunksCreated: result.ChunksCreated,
		Error:         result.Error,
	}
}

// Ingest runs the pipeline for one document. A failed ingestion is still a
// 200 with status "failed"; only an unknown document is an HTTP error.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	result, err := h.ingestion.IngestDocument(r.Context(), id, force)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ingestToResponse(result))
}

type StatusResponse struct {
	IsIngested bool `json:"is_ingested"`
	ChunkCount int  `json:"chunk_count"`
}

func (h *IngestHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	status, err := h.store.Status(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, StatusResponse{
		IsIngested: status.IsIngested,
		ChunkCount: status.ChunkCount,
	})
}

type DeleteChunksResponse struct {
	DeletedCount int `json:"deleted_count"`
}

func (h *IngestHandler) DeleteChunks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	deleted, err := h.store.DeleteBySource(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteChunksResponse{DeletedCount: deleted})
}

type BatchResultResponse struct {
	Processed int                     `json:"processed"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	Results   []BatchDocumentResponse `json:"results"`
}

type BatchDocumentResponse struct {
	SourceID      string `json:"source_id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	ChunksCreated int    `json:"chunks_created"`
	Error         string `json:"error,omitempty"`
}

func (h *IngestHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.ingestion.IngestAllPending(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]BatchDocumentResponse, len(batch.Results))
	for i, result := range batch.Results {
		results[i] = BatchDocumentResponse{
			SourceID:      result.SourceID,
			Name:          result.Name,
			Status:        string(result.Status),
			ChunksCreated: result.ChunksCreated,
			Error:         result.Error,
		}
	}

	api.Success(w, http.StatusOK, BatchResultResponse{
		Processed: batch.Processed,
		Succeeded: batch.Succeeded,
		Failed:    batch.Failed,
		Results:   results,
	})
}
