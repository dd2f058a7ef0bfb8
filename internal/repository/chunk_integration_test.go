//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paperbase/paperbase/internal/domain"
	"github.com/paperbase/paperbase/internal/service"
	"github.com/paperbase/paperbase/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDocument registers a document row that chunks can reference.
func setupTestDocument(ctx context.Context, t *testing.T, docRepo *DocumentRepository, category domain.Category) *domain.SourceDocument {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &domain.SourceDocument{
		ID:         uuid.NewString(),
		Name:       "Test Document " + uuid.NewString()[:8],
		Category:   category,
		StorageKey: "documents/" + uuid.NewString() + ".pdf",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, docRepo.Create(ctx, doc))
	return doc
}

func testChunk(sourceID string, index int, title, content string) *domain.KnowledgeChunk {
	return &domain.KnowledgeChunk{
		ID:          uuid.NewString(),
		Category:    domain.CategoryGeneral,
		SourceID:    sourceID,
		ChunkIndex:  index,
		Title:       title,
		Content:     content,
		Keywords:    []string{"test"},
		LastUpdated: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// testEmbedding returns a vector of the store's expected width with a
// distinguishable leading value.
func testEmbedding(lead float32) []float32 {
	v := make([]float32, domain.EmbeddingDimensions)
	v[0] = lead
	v[1] = 1 - lead
	return v
}

func TestChunkRepositoryIntegration_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)
	doc := setupTestDocument(ctx, t, docRepo, domain.CategoryGeneral)

	t.Run("round trips a chunk with embedding", func(t *testing.T) {
		chunk := testChunk(doc.ID, 0, "Expense Policy", "Receipts are required for claims over fifty dollars.")
		chunk.Keywords = []string{"receipts", "claims"}
		chunk.Source = doc.Name + " (part 1)"
		chunk.Embedding = testEmbedding(0.5)
		require.NoError(t, chunkRepo.Insert(ctx, chunk))

		got, err := chunkRepo.GetByID(ctx, chunk.ID)
		require.NoError(t, err)
		assert.Equal(t, chunk.ID, got.ID)
		assert.Equal(t, doc.ID, got.SourceID)
		assert.Equal(t, chunk.Title, got.Title)
		assert.Equal(t, chunk.Content, got.Content)
		assert.Equal(t, []string{"receipts", "claims"}, got.Keywords)
		assert.Equal(t, chunk.Source, got.Source)
		require.Len(t, got.Embedding, domain.EmbeddingDimensions)
		assert.InDelta(t, 0.5, got.Embedding[0], 0.0001)
	})

	t.Run("round trips a chunk without embedding", func(t *testing.T) {
		chunk := testChunk(doc.ID, 1, "Travel Policy", "Book flights at least two weeks in advance.")
		require.NoError(t, chunkRepo.Insert(ctx, chunk))

		got, err := chunkRepo.GetByID(ctx, chunk.ID)
		require.NoError(t, err)
		assert.False(t, got.HasEmbedding())
	})

	t.Run("returns not found for unknown chunk", func(t *testing.T) {
		_, err := chunkRepo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrChunkNotFound)
	})
}

func TestChunkRepositoryIntegration_SourceLifecycle(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)
	docA := setupTestDocument(ctx, t, docRepo, domain.CategoryGeneral)
	docB := setupTestDocument(ctx, t, docRepo, domain.CategoryGeneral)

	for i := 0; i < 3; i++ {
		require.NoError(t, chunkRepo.Insert(ctx, testChunk(docA.ID, i, "A", "Chunk body for the first document.")))
	}
	require.NoError(t, chunkRepo.Insert(ctx, testChunk(docB.ID, 0, "B", "Chunk body for the second document.")))

	t.Run("counts chunks per source", func(t *testing.T) {
		count, err := chunkRepo.CountBySource(ctx, docA.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		count, err = chunkRepo.CountBySource(ctx, docB.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("lists distinct source ids", func(t *testing.T) {
		ids, err := chunkRepo.ListSourceIDs(ctx)
		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.Contains(t, ids, docA.ID)
		assert.Contains(t, ids, docB.ID)
	})

	t.Run("deletes only the requested source", func(t *testing.T) {
		deleted, err := chunkRepo.DeleteBySource(ctx, docA.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, deleted)

		count, err := chunkRepo.CountBySource(ctx, docA.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		count, err = chunkRepo.CountBySource(ctx, docB.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("deleting a never-ingested source is not an error", func(t *testing.T) {
		deleted, err := chunkRepo.DeleteBySource(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Equal(t, 0, deleted)
	})
}

func TestChunkRepositoryIntegration_ListEmbedded(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)
	finDoc := setupTestDocument(ctx, t, docRepo, domain.CategoryFinance)
	insDoc := setupTestDocument(ctx, t, docRepo, domain.CategoryInsurance)

	embedded := testChunk(finDoc.ID, 0, "Budget", "Quarterly budget review notes.")
	embedded.Category = domain.CategoryFinance
	embedded.Embedding = testEmbedding(0.1)
	require.NoError(t, chunkRepo.Insert(ctx, embedded))

	plain := testChunk(finDoc.ID, 1, "Budget", "Unembedded continuation of the notes.")
	plain.Category = domain.CategoryFinance
	require.NoError(t, chunkRepo.Insert(ctx, plain))

	other := testChunk(insDoc.ID, 0, "Coverage", "Policy coverage details.")
	other.Category = domain.CategoryInsurance
	other.Embedding = testEmbedding(0.9)
	require.NoError(t, chunkRepo.Insert(ctx, other))

	t.Run("returns only embedded chunks", func(t *testing.T) {
		chunks, err := chunkRepo.ListEmbedded(ctx, service.ChunkFilter{})
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		for _, c := range chunks {
			assert.True(t, c.HasEmbedding())
		}
	})

	t.Run("filters by category", func(t *testing.T) {
		chunks, err := chunkRepo.ListEmbedded(ctx, service.ChunkFilter{Category: domain.CategoryFinance})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, embedded.ID, chunks[0].ID)
	})

	t.Run("filters by source", func(t *testing.T) {
		chunks, err := chunkRepo.ListEmbedded(ctx, service.ChunkFilter{SourceID: insDoc.ID})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, other.ID, chunks[0].ID)
	})
}

func TestChunkRepositoryIntegration_EmbeddingBackfill(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)
	doc := setupTestDocument(ctx, t, docRepo, domain.CategoryGeneral)

	older := testChunk(doc.ID, 0, "Old", "The older unembedded chunk.")
	older.LastUpdated = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	require.NoError(t, chunkRepo.Insert(ctx, older))

	newer := testChunk(doc.ID, 1, "New", "The newer unembedded chunk.")
	require.NoError(t, chunkRepo.Insert(ctx, newer))

	embedded := testChunk(doc.ID, 2, "Done", "Already embedded chunk.")
	embedded.Embedding = testEmbedding(0.3)
	require.NoError(t, chunkRepo.Insert(ctx, embedded))

	t.Run("lists missing embeddings oldest first", func(t *testing.T) {
		missing, err := chunkRepo.ListMissingEmbedding(ctx)
		require.NoError(t, err)
		require.Len(t, missing, 2)
		assert.Equal(t, older.ID, missing[0].ID)
		assert.Equal(t, newer.ID, missing[1].ID)
	})

	t.Run("update embedding removes chunk from the missing set", func(t *testing.T) {
		require.NoError(t, chunkRepo.UpdateEmbedding(ctx, older.ID, testEmbedding(0.7)))

		got, err := chunkRepo.GetByID(ctx, older.ID)
		require.NoError(t, err)
		require.True(t, got.HasEmbedding())
		assert.InDelta(t, 0.7, got.Embedding[0], 0.0001)
		assert.True(t, got.LastUpdated.After(older.LastUpdated))

		missing, err := chunkRepo.ListMissingEmbedding(ctx)
		require.NoError(t, err)
		require.Len(t, missing, 1)
		assert.Equal(t, newer.ID, missing[0].ID)
	})

	t.Run("update embedding for unknown chunk returns not found", func(t *testing.T) {
		err := chunkRepo.UpdateEmbedding(ctx, uuid.NewString(), testEmbedding(0.2))
		assert.ErrorIs(t, err, domain.ErrChunkNotFound)
	})
}

func TestChunkRepositoryIntegration_SearchText(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)
	finDoc := setupTestDocument(ctx, t, docRepo, domain.CategoryFinance)
	govDoc := setupTestDocument(ctx, t, docRepo, domain.CategoryGovernment)

	deduction := testChunk(finDoc.ID, 0, "Tax Deductions", "Charitable donations are deductible up to the annual limit.")
	deduction.Category = domain.CategoryFinance
	require.NoError(t, chunkRepo.Insert(ctx, deduction))

	filing := testChunk(govDoc.ID, 0, "Filing Deadlines", "Tax returns are due in April unless an extension is filed.")
	filing.Category = domain.CategoryGovernment
	require.NoError(t, chunkRepo.Insert(ctx, filing))

	unrelated := testChunk(finDoc.ID, 1, "Parking", "Visitor parking is behind the main building.")
	unrelated.Category = domain.CategoryFinance
	require.NoError(t, chunkRepo.Insert(ctx, unrelated))

	t.Run("matches against title and content", func(t *testing.T) {
		results, err := chunkRepo.SearchText(ctx, "tax", service.ChunkFilter{}, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Greater(t, r.Score, float32(0))
			assert.NotEqual(t, unrelated.ID, r.Chunk.ID)
		}
	})

	t.Run("applies category filter", func(t *testing.T) {
		results, err := chunkRepo.SearchText(ctx, "tax", service.ChunkFilter{Category: domain.CategoryGovernment}, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, filing.ID, results[0].Chunk.ID)
	})

	t.Run("respects the limit", func(t *testing.T) {
		results, err := chunkRepo.SearchText(ctx, "tax", service.ChunkFilter{}, 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("returns empty for no matches", func(t *testing.T) {
		results, err := chunkRepo.SearchText(ctx, "submarine", service.ChunkFilter{}, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
