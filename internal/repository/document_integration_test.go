//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paperbase/paperbase/internal/domain"
	"github.com/paperbase/paperbase/internal/pagination"
	"github.com/paperbase/paperbase/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepositoryIntegration_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)

	t.Run("round trips a document", func(t *testing.T) {
		doc := setupTestDocument(ctx, t, docRepo, domain.CategoryFinance)

		byID, err := docRepo.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.Name, byID.Name)
		assert.Equal(t, domain.CategoryFinance, byID.Category)
		assert.Equal(t, doc.StorageKey, byID.StorageKey)
		assert.Equal(t, 0, byID.PageCount)

		byName, err := docRepo.GetByName(ctx, doc.Name)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, byName.ID)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		doc := setupTestDocument(ctx, t, docRepo, domain.CategoryGeneral)

		dup := &domain.SourceDocument{
			ID:         uuid.NewString(),
			Name:       doc.Name,
			Category:   domain.CategoryGeneral,
			StorageKey: "documents/" + uuid.NewString() + ".pdf",
			CreatedAt:  time.Now().UTC(),
			UpdatedAt:  time.Now().UTC(),
		}
		err := docRepo.Create(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrDocumentAlreadyExists)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := docRepo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})
}

func TestDocumentRepositoryIntegration_ListWithCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)

	docs := make([]*domain.SourceDocument, 0, 5)
	for i := 0; i < 5; i++ {
		docs = append(docs, setupTestDocument(ctx, t, docRepo, domain.CategoryGeneral))
		time.Sleep(10 * time.Millisecond) // distinct updated_at for stable paging
	}

	t.Run("pages newest first", func(t *testing.T) {
		page1, err := docRepo.ListWithCursor(ctx, nil, 2)
		require.NoError(t, err)
		require.Len(t, page1.Items, 2)
		assert.True(t, page1.HasMore)
		assert.NotEmpty(t, page1.Cursor)
		assert.Equal(t, docs[4].ID, page1.Items[0].ID)
		assert.Equal(t, docs[3].ID, page1.Items[1].ID)

		cursor, err := pagination.DecodeCursor(page1.Cursor)
		require.NoError(t, err)

		page2, err := docRepo.ListWithCursor(ctx, cursor, 2)
		require.NoError(t, err)
		require.Len(t, page2.Items, 2)
		assert.True(t, page2.HasMore)
		assert.Equal(t, docs[2].ID, page2.Items[0].ID)
		assert.Equal(t, docs[1].ID, page2.Items[1].ID)

		cursor, err = pagination.DecodeCursor(page2.Cursor)
		require.NoError(t, err)

		page3, err := docRepo.ListWithCursor(ctx, cursor, 2)
		require.NoError(t, err)
		require.Len(t, page3.Items, 1)
		assert.False(t, page3.HasMore)
		assert.Empty(t, page3.Cursor)
		assert.Equal(t, docs[0].ID, page3.Items[0].ID)
	})

	t.Run("returns everything when the page is large enough", func(t *testing.T) {
		page, err := docRepo.ListWithCursor(ctx, nil, 50)
		require.NoError(t, err)
		assert.Len(t, page.Items, 5)
		assert.False(t, page.HasMore)
	})
}

func TestDocumentRepositoryIntegration_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	t.Run("updates page count and bumps updated_at", func(t *testing.T) {
		doc := setupTestDocument(ctx, t, docRepo, domain.CategoryGeneral)
		require.NoError(t, docRepo.UpdatePageCount(ctx, doc.ID, 12))

		got, err := docRepo.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 12, got.PageCount)
		assert.True(t, got.UpdatedAt.After(doc.UpdatedAt))
	})

	t.Run("update for unknown document returns not found", func(t *testing.T) {
		err := docRepo.UpdatePageCount(ctx, uuid.NewString(), 3)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("delete cascades to chunks", func(t *testing.T) {
		doc := setupTestDocument(ctx, t, docRepo, domain.CategoryGeneral)
		require.NoError(t, chunkRepo.Insert(ctx, testChunk(doc.ID, 0, "Body", "Chunk belonging to the deleted document.")))

		require.NoError(t, docRepo.Delete(ctx, doc.ID))

		_, err := docRepo.GetByID(ctx, doc.ID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

		count, err := chunkRepo.CountBySource(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("delete for unknown document returns not found", func(t *testing.T) {
		err := docRepo.Delete(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})
}
