package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paperbase/paperbase/internal/domain"
	"github.com/paperbase/paperbase/internal/service"
	"github.com/pgvector/pgvector-go"
)

const chunkColumns = `id, category, source_id, chunk_index, title, content, keywords, source, embedding, last_updated`

// ChunkRepository handles persistence of knowledge chunks, including the
// pgvector embedding column and the store's native text search.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

func (r *ChunkRepository) Insert(ctx context.Context, c *domain.KnowledgeChunk) error {
	var embedding *pgvector.Vector
	if c.HasEmbedding() {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_chunks (id, category, source_id, chunk_index, title, content, keywords, source, embedding, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Category, nullableString(c.SourceID), c.ChunkIndex, c.Title, c.Content, c.Keywords, nullableString(c.Source), embedding, c.LastUpdated,
	)
	return err
}

func (r *ChunkRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeChunk, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+chunkColumns+` FROM knowledge_chunks WHERE id = $1`, id)
	c, err := scanChunkRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}
	return c, nil
}

// DeleteBySource removes all chunks for a source document and returns the
// number deleted. A never-ingested source deletes nothing; that is not an
// error.
func (r *ChunkRepository) DeleteBySource(ctx context.Context, sourceID string) (int, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM knowledge_chunks WHERE source_id = $1`, sourceID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func (r *ChunkRepository) CountBySource(ctx context.Context, sourceID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM knowledge_chunks WHERE source_id = $1`, sourceID).Scan(&count)
	return count, err
}

// ListSourceIDs returns the distinct source IDs that have stored chunks.
func (r *ChunkRepository) ListSourceIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT source_id FROM knowledge_chunks WHERE source_id IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListEmbedded returns chunks carrying an embedding, narrowed by the
// filter, in deterministic (source, chunk index) order.
func (r *ChunkRepository) ListEmbedded(ctx context.Context, filter service.ChunkFilter) ([]*domain.KnowledgeChunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM knowledge_chunks WHERE embedding IS NOT NULL`
	args := []any{}
	query, args = appendFilter(query, args, filter)
	query += ` ORDER BY source_id NULLS LAST, chunk_index, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

// ListMissingEmbedding returns chunks without an embedding, oldest first.
func (r *ChunkRepository) ListMissingEmbedding(ctx context.Context) ([]*domain.KnowledgeChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+chunkColumns+` FROM knowledge_chunks WHERE embedding IS NULL ORDER BY last_updated, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

// UpdateEmbedding backfills an embedding. This is the only mutation a
// stored chunk ever sees; content and keywords are immutable.
func (r *ChunkRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_chunks SET embedding = $1, last_updated = $2 WHERE id = $3`,
		pgvector.NewVector(embedding), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

// SearchText runs Postgres full-text search over title and content,
// ranked by ts_rank descending.
func (r *ChunkRepository) SearchText(ctx context.Context, queryText string, filter service.ChunkFilter, limit int) ([]*service.ScoredChunk, error) {
	if limit <= 0 {
		limit = service.DefaultSearchLimit
	}

	query := `SELECT ` + chunkColumns + `,
		ts_rank(to_tsvector('english', title || ' ' || content), plainto_tsquery('english', $1)) AS score
		FROM knowledge_chunks
		WHERE to_tsvector('english', title || ' ' || content) @@ plainto_tsquery('english', $1)`
	args := []any{queryText}
	query, args = appendFilter(query, args, filter)
	args = append(args, limit)
	query += ` ORDER BY score DESC, source_id NULLS LAST, chunk_index, id LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*service.ScoredChunk
	for rows.Next() {
		c, score, err := scanScoredChunk(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, &service.ScoredChunk{Chunk: c, Score: score})
	}
	return results, rows.Err()
}

func appendFilter(query string, args []any, filter service.ChunkFilter) (string, []any) {
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	if filter.SourceID != "" {
		args = append(args, filter.SourceID)
		query += ` AND source_id = $` + strconv.Itoa(len(args))
	}
	return query, args
}

func scanChunkRows(rows pgx.Rows) ([]*domain.KnowledgeChunk, error) {
	var results []*domain.KnowledgeChunk
	for rows.Next() {
		c, err := scanChunkRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func scanChunkRow(row pgx.Row) (*domain.KnowledgeChunk, error) {
	var c domain.KnowledgeChunk
	var sourceID, source *string
	var embedding *pgvector.Vector
	if err := row.Scan(&c.ID, &c.Category, &sourceID, &c.ChunkIndex, &c.Title, &c.Content, &c.Keywords, &source, &embedding, &c.LastUpdated); err != nil {
		return nil, err
	}
	if sourceID != nil {
		c.SourceID = *sourceID
	}
	if source != nil {
		c.Source = *source
	}
	if embedding != nil {
		c.Embedding = embedding.Slice()
	}
	return &c, nil
}

func scanScoredChunk(rows pgx.Rows) (*domain.KnowledgeChunk, float32, error) {
	var c domain.KnowledgeChunk
	var sourceID, source *string
	var embedding *pgvector.Vector
	var score float32
	if err := rows.Scan(&c.ID, &c.Category, &sourceID, &c.ChunkIndex, &c.Title, &c.Content, &c.Keywords, &source, &embedding, &c.LastUpdated, &score); err != nil {
		return nil, 0, err
	}
	if sourceID != nil {
		c.SourceID = *sourceID
	}
	if source != nil {
		c.Source = *source
	}
	if embedding != nil {
		c.Embedding = embedding.Slice()
	}
	return &c, score, nil
}
