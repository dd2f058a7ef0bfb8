package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paperbase/paperbase/internal/domain"
	"github.com/paperbase/paperbase/internal/service"
)

type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) IngestDocument(ctx context.Context, sourceID string, force bool) (*service.IngestResult, error) {
	args := m.Called(ctx, sourceID, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func (m *MockIngestionService) IngestAllPending(ctx context.Context) (*service.BatchResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchResult), args.Error(1)
}

type MockChunkStoreService struct {
	mock.Mock
}

func (m *MockChunkStoreService) Status(ctx context.Context, sourceID string) (*service.SourceStatus, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SourceStatus), args.Error(1)
}

func (m *MockChunkStoreService) DeleteBySource(ctx context.Context, sourceID string) (int, error) {
	args := m.Called(ctx, sourceID)
	return args.Int(0), args.Error(1)
}

func requestWithID(method, url, id string) *http.Request {
	req := httptest.NewRequest(method, url, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestIngestHandler_Ingest_Completed(t *testing.T) {
	mockIngestion := new(MockIngestionService)
	mockStore := new(MockChunkStoreService)
	handler := NewIngestHandler(mockIngestion, mockStore)

	mockIngestion.On("IngestDocument", mock.Anything, "doc-1", false).Return(&service.IngestResult{
		Status:        service.IngestStatusCompleted,
		ChunksCreated: 4,
	}, nil)

	req := requestWithID(http.MethodPost, "/documents/doc-1/ingest", "doc-1")
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data IngestResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Data.Status)
	assert.Equal(t, 4, resp.Data.ChunksCreated)
	assert.Empty(t, resp.Data.Error)
	mockIngestion.AssertExpectations(t)
}

func TestIngestHandler_Ingest_Force(t *testing.T) {
	mockIngestion := new(MockIngestionService)
	mockStore := new(MockChunkStoreService)
	handler := NewIngestHandler(mockIngestion, mockStore)

	mockIngestion.On("IngestDocument", mock.Anything, "doc-1", true).Return(&service.IngestResult{
		Status:        service.IngestStatusCompleted,
		ChunksCreated: 2,
	}, nil)

	req := requestWithID(http.MethodPost, "/documents/doc-1/ingest?force=true", "doc-1")
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockIngestion.AssertExpectations(t)
}

func TestIngestHandler_Ingest_FailedStatusIsStill200(t *testing.T) {
	mockIngestion := new(MockIngestionService)
	mockStore := new(MockChunkStoreService)
	handler := NewIngestHandler(mockIngestion, mockStore)

	mockIngestion.On("IngestDocument", mock.Anything, "doc-1", false).Return(&service.IngestResult{
		Status: service.IngestStatusFailed,
		Error:  "document is unreadable or scanned",
	}, nil)

	req := requestWithID(http.MethodPost, "/documents/doc-1/ingest", "doc-1")
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data IngestResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.Data.Status)
	assert.Contains(t, resp.Data.Error, "unreadable")
}

func TestIngestHandler_Ingest_UnknownDocument(t *testing.T) {
	mockIngestion := new(MockIngestionService)
	mockStore := new(MockChunkStoreService)
	handler := NewIngestHandler(mockIngestion, mockStore)

	mockIngestion.On("IngestDocument", mock.Anything, "missing", false).Return(nil, domain.ErrDocumentNotFound)

	req := requestWithID(http.MethodPost, "/documents/missing/ingest", "missing")
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngestHandler_Status(t *testing.T) {
	mockIngestion := new(MockIngestionService)
	mockStore := new(MockChunkStoreService)
	handler := NewIngestHandler(mockIngestion, mockStore)

	mockStore.On("Status", mock.Anything, "doc-1").Return(&service.SourceStatus{
		IsIngested: true,
		ChunkCount: 7,
	}, nil)

	req := requestWithID(http.MethodGet, "/documents/doc-1/status", "doc-1")
	w := httptest.NewRecorder()

	handler.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data StatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.IsIngested)
	assert.Equal(t, 7, resp.Data.ChunkCount)
	mockStore.AssertExpectations(t)
}

func TestIngestHandler_DeleteChunks(t *testing.T) {
	mockIngestion := new(MockIngestionService)
	mockStore := new(MockChunkStoreService)
	handler := NewIngestHandler(mockIngestion, mockStore)

	mockStore.On("DeleteBySource", mock.Anything, "doc-1").Return(5, nil)

	req := requestWithID(http.MethodDelete, "/documents/doc-1/chunks", "doc-1")
	w := httptest.NewRecorder()

	handler.DeleteChunks(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data DeleteChunksResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Data.DeletedCount)
	mockStore.AssertExpectations(t)
}

func TestIngestHandler_IngestBatch(t *testing.T) {
	mockIngestion := new(MockIngestionService)
	mockStore := new(MockChunkStoreService)
	handler := NewIngestHandler(mockIngestion, mockStore)

	mockIngestion.On("IngestAllPending", mock.Anything).Return(&service.BatchResult{
		Processed: 2,
		Succeeded: 1,
		Failed:    1,
		Results: []service.DocumentIngestResult{
			{SourceID: "doc-1", Name: "Lease Agreement", Status: service.IngestStatusCompleted, ChunksCreated: 3},
			{SourceID: "doc-2", Name: "Scanned Receipt", Status: service.IngestStatusFailed, Error: "document is unreadable or scanned"},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/documents/ingest-batch", nil)
	w := httptest.NewRecorder()

	handler.IngestBatch(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data BatchResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Processed)
	assert.Equal(t, 1, resp.Data.Succeeded)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Results, 2)
	assert.Equal(t, "completed", resp.Data.Results[0].Status)
	assert.Equal(t, "failed", resp.Data.Results[1].Status)
	mockIngestion.AssertExpectations(t)
}
