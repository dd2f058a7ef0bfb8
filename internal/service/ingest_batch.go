package service

import (
	"context"
	"time"

	"github.com/paperbase/paperbase/internal/domain"
	"github.com/paperbase/paperbase/internal/telemetry"
)

// ExtractResult is the output of the extraction collaborator.
type ExtractResult struct {
	Text      string
	PageCount int
}

// ExtractionClient defines the boundary to the text extraction collaborator.
type ExtractionClient interface {
	Extract(ctx context.Context, content []byte) (*ExtractResult, error)
}

// ObjectStorage fetches raw document bytes for ingestion.
type ObjectStorage interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// OrchestratorDocumentRepository defines the document registry operations
// the orchestrator needs.
type OrchestratorDocumentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.SourceDocument, error)
	List(ctx context.Context) ([]*domain.SourceDocument, error)
	UpdatePageCount(ctx context.Context, id string, pageCount int) error
}

// IngestedSourceLister reports which source documents already have chunks.
type IngestedSourceLister interface {
	ListSourceIDs(ctx context.Context) ([]string, error)
}

// DocumentIngestResult is one document's outcome within a batch.
type DocumentIngestResult struct {
	SourceID      string
	Name          string
	Status        IngestStatus
	ChunksCreated int
	Error         string
}

// BatchResult aggregates a batch ingestion run.
type BatchResult struct {
	Processed int
	Succeeded int
	Failed    int
	Results   []DocumentIngestResult
}

// IngestionOrchestrator composes storage fetch, extraction, chunking and
// the knowledge store into document ingestion. All collaborators are
// injected at construction.
type IngestionOrchestrator struct {
	docs           OrchestratorDocumentRepository
	sources        IngestedSourceLister
	storage        ObjectStorage
	extractor      ExtractionClient
	knowledge      *KnowledgeService
	extractTimeout time.Duration
}

// NewIngestionOrchestrator creates a new IngestionOrchestrator instance
func NewIngestionOrchestrator(
	docs OrchestratorDocumentRepository,
	sources IngestedSourceLister,
	storage ObjectStorage,
	extractor ExtractionClient,
	knowledge *KnowledgeService,
	extractTimeout time.Duration,
) *IngestionOrchestrator {
	if extractTimeout <= 0 {
		extractTimeout = 30 * time.Second
	}
	return &IngestionOrchestrator{
		docs:           docs,
		sources:        sources,
		storage:        storage,
		extractor:      extractor,
		knowledge:      knowledge,
		extractTimeout: extractTimeout,
	}
}

// IngestDocument runs the full pipeline for one registered document.
// Extraction failure is fatal for this document only and is reported in
// the result rather than raised; an unknown document ID is an error.
func (o *IngestionOrchestrator) IngestDocument(ctx context.Context, sourceID string, force bool) (*IngestResult, error) {
	doc, err := o.docs.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "ingest.document", telemetry.SpanAttributes{
		SourceID:  doc.ID,
		Category:  string(doc.Category),
		Operation: "ingest",
	})
	defer span.End()

	content, err := o.storage.GetObject(ctx, doc.StorageKey)
	if err != nil {
		span.SetError(err)
		return &IngestResult{
			Status: IngestStatusFailed,
			Error:  domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to read document from storage", err).Error(),
		}, nil
	}

	extractCtx, cancel := context.WithTimeout(ctx, o.extractTimeout)
	extracted, err := o.extractor.Extract(extractCtx, content)
	cancel()
	if err != nil {
		span.SetError(err)
		return &IngestResult{
			Status: IngestStatusFailed,
			Error:  domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, "document is unreadable or scanned", err).Error(),
		}, nil
	}

	if extracted.PageCount > 0 && extracted.PageCount != doc.PageCount {
		// Best effort; the page count is informational.
		_ = o.docs.UpdatePageCount(ctx, doc.ID, extracted.PageCount)
	}

	return o.knowledge.IngestDocument(ctx, IngestDocumentInput{
		SourceID: doc.ID,
		Name:     doc.Name,
		Category: doc.Category,
		Text:     extracted.Text,
		Force:    force,
	})
}

// IngestAllPending ingests every registered document that has no chunks
// yet, sequentially to bound load on the extraction and embedding
// collaborators. One document's failure is recorded and does not stop the
// batch. The run is cancellable between documents; a cancellation returns
// the partial result together with the context error.
func (o *IngestionOrchestrator) IngestAllPending(ctx context.Context) (*BatchResult, error) {
	docs, err := o.docs.List(ctx)
	if err != nil {
		return nil, err
	}

	sourceIDs, err := o.sources.ListSourceIDs(ctx)
	if err != nil {
		return nil, err
	}
	ingested := make(map[string]struct{}, len(sourceIDs))
	for _, id := range sourceIDs {
		ingested[id] = struct{}{}
	}

	batch := &BatchResult{}
	for _, doc := range docs {
		if _, ok := ingested[doc.ID]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		batch.Processed++
		entry := DocumentIngestResult{SourceID: doc.ID, Name: doc.Name}

		result, err := o.IngestDocument(ctx, doc.ID, false)
		switch {
		case err != nil:
			entry.Status = IngestStatusFailed
			entry.Error = err.Error()
		default:
			entry.Status = result.Status
			entry.ChunksCreated = result.ChunksCreated
			entry.Error = result.Error
		}

		if entry.Status == IngestStatusFailed {
			batch.Failed++
		} else {
			batch.Succeeded++
		}
		batch.Results = append(batch.Results, entry)
	}
	return batch, nil
}
