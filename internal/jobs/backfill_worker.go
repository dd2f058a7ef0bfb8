package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/paperbase/paperbase/internal/service"
)

// EmbeddingBackfiller scans stored chunks and fills in missing embeddings.
type EmbeddingBackfiller interface {
	MigrateMissingEmbeddings(ctx context.Context) (*service.MigrationResult, error)
}

// BackfillWorker retries embedding generation for chunks that were stored
// without a vector, typically because the embedding provider was down
// during ingestion.
type BackfillWorker struct {
	backfiller EmbeddingBackfiller
}

// NewBackfillWorker creates a new BackfillWorker instance
func NewBackfillWorker(backfiller EmbeddingBackfiller) *BackfillWorker {
	return &BackfillWorker{backfiller: backfiller}
}

// Run implements the Task interface.
func (w *BackfillWorker) Run(ctx context.Context) error {
	result, err := w.backfiller.MigrateMissingEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("embedding backfill failed: %w", err)
	}

	if result.Scanned == 0 {
		return nil
	}

	log.Printf("Embedding backfill: scanned %d chunks, migrated %d, failed %d",
		result.Scanned, result.Migrated, result.Failed)
	return nil
}
