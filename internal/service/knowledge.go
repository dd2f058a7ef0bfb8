package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/paperbase/paperbase/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeChunkRepositoryInterface defines the repository interface for chunk persistence
type KnowledgeChunkRepositoryInterface interface {
	Insert(ctx context.Context, chunk *domain.KnowledgeChunk) error
	DeleteBySource(ctx context.Context, sourceID string) (int, error)
	CountBySource(ctx context.Context, sourceID string) (int, error)
	ListMissingEmbedding(ctx context.Context) ([]*domain.KnowledgeChunk, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// IngestStatus is the outcome of a document ingestion.
type IngestStatus string

const (
	IngestStatusCompleted       IngestStatus = "completed"
	IngestStatusFailed          IngestStatus = "failed"
	IngestStatusAlreadyIngested IngestStatus = "already_ingested"
)

// IngestResult reports the outcome of ingesting one document. For
// already_ingested, ChunksCreated carries the pre-existing chunk count.
type IngestResult struct {
	Status        IngestStatus
	ChunksCreated int
	Error         string
}

// MigrationResult reports an embedding backfill pass. Migrated and Failed
// are counted independently; one chunk's failure never aborts the scan.
type MigrationResult struct {
	Scanned  int
	Migrated int
	Failed   int
}

// SourceStatus reports whether a source document has stored chunks.
type SourceStatus struct {
	IsIngested bool
	ChunkCount int
}

// IngestDocumentInput carries one document's extracted text into the store.
type IngestDocumentInput struct {
	SourceID string
	Name     string
	Category domain.Category
	Text     string
	Force    bool
}

// AddChunkInput creates a single chunk outside the document pipeline.
type AddChunkInput struct {
	Category domain.Category
	SourceID string
	Title    string
	Content  string
	Source   string
}

// KnowledgeServiceConfig tunes chunking and embedding behavior.
type KnowledgeServiceConfig struct {
	Chunking     ChunkConfig
	KeywordCount int
	EmbedTimeout time.Duration
	EmbedFanOut  int
}

// DefaultKnowledgeServiceConfig returns the default store configuration.
func DefaultKnowledgeServiceConfig() KnowledgeServiceConfig {
	return KnowledgeServiceConfig{
		Chunking:     DefaultChunkConfig(),
		KeywordCount: DefaultKeywordCount,
		EmbedTimeout: 10 * time.Second,
		EmbedFanOut:  4,
	}
}

// KnowledgeService owns chunk persistence, ingestion idempotency and
// embedding backfill. The embedding client is optional: without one every
// chunk is stored text-search only.
type KnowledgeService struct {
	repo     KnowledgeChunkRepositoryInterface
	embedder EmbeddingClient
	uuidGen  UUIDGenerator
	cfg      KnowledgeServiceConfig
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(repo KnowledgeChunkRepositoryInterface, embedder EmbeddingClient) *KnowledgeService {
	return NewKnowledgeServiceWithConfig(repo, embedder, DefaultKnowledgeServiceConfig())
}

// NewKnowledgeServiceWithConfig creates a KnowledgeService with explicit configuration.
func NewKnowledgeServiceWithConfig(
	repo KnowledgeChunkRepositoryInterface,
	embedder EmbeddingClient,
	cfg KnowledgeServiceConfig,
) *KnowledgeService {
	if cfg.KeywordCount <= 0 {
		cfg.KeywordCount = DefaultKeywordCount
	}
	if cfg.EmbedFanOut <= 0 {
		cfg.EmbedFanOut = 4
	}
	return &KnowledgeService{
		repo:     repo,
		embedder: embedder,
		uuidGen:  &DefaultUUIDGenerator{},
		cfg:      cfg,
	}
}

// WithUUIDGenerator replaces the ID generator (for testing).
func (s *KnowledgeService) WithUUIDGenerator(gen UUIDGenerator) *KnowledgeService {
	s.uuidGen = gen
	return s
}

// embedOutcome models the best-effort embedding result explicitly:
// Embedded with a vector, or NotEmbedded (vector nil).
type embedOutcome struct {
	Vector   []float32
	Embedded bool
}

// tryEmbed attempts an embedding within the configured deadline. Failures
// and timeouts degrade to NotEmbedded; they never propagate.
func (s *KnowledgeService) tryEmbed(ctx context.Context, text string) embedOutcome {
	if s.embedder == nil {
		return embedOutcome{}
	}

	embedCtx := ctx
	if s.cfg.EmbedTimeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, s.cfg.EmbedTimeout)
		defer cancel()
	}

	vec, err := s.embedder.GenerateEmbedding(embedCtx, text)
	if err != nil || len(vec) == 0 {
		return embedOutcome{}
	}
	return embedOutcome{Vector: vec, Embedded: true}
}

// AddChunk assigns an ID, extracts keywords, attempts an embedding
// best-effort and persists the chunk. The call never fails because of an
// embedding failure; the chunk is stored text-search only instead.
func (s *KnowledgeService) AddChunk(ctx context.Context, input AddChunkInput) (*domain.KnowledgeChunk, error) {
	chunk := &domain.KnowledgeChunk{
		ID:          s.uuidGen.NewString(),
		Category:    input.Category,
		SourceID:    input.SourceID,
		Title:       input.Title,
		Content:     input.Content,
		Keywords:    extractKeywords(input.Content, s.cfg.KeywordCount),
		Source:      input.Source,
		LastUpdated: time.Now().UTC(),
	}
	if err := domain.ValidateChunk(chunk); err != nil {
		return nil, err
	}

	if outcome := s.tryEmbed(ctx, embedText(chunk.Title, chunk.Content)); outcome.Embedded {
		chunk.Embedding = outcome.Vector
	}

	if err := s.repo.Insert(ctx, chunk); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStoreWriteFailed, "failed to persist chunk", err)
	}
	return chunk, nil
}

// IngestDocument chunks one document's text and stores the resulting
// chunks. It is idempotent: existing chunks for the source short-circuit
// unless Force replaces them. Per-chunk store failures are counted and do
// not abort remaining chunks; only input validation returns an error.
func (s *KnowledgeService) IngestDocument(ctx context.Context, input IngestDocumentInput) (*IngestResult, error) {
	if input.SourceID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if !domain.IsValidCategory(input.Category) {
		return nil, domain.ErrInvalidCategory
	}

	chunks := chunkText(input.Text, s.cfg.Chunking)
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocumentText
	}

	existing, err := s.repo.CountBySource(ctx, input.SourceID)
	if err != nil {
		return &IngestResult{Status: IngestStatusFailed, Error: err.Error()}, nil
	}
	if existing > 0 {
		if !input.Force {
			return &IngestResult{Status: IngestStatusAlreadyIngested, ChunksCreated: existing}, nil
		}
		// Forced re-ingestion: delete-then-recreate. A brief window with
		// zero chunks for this source is observable here.
		if _, err := s.repo.DeleteBySource(ctx, input.SourceID); err != nil {
			return &IngestResult{Status: IngestStatusFailed, Error: err.Error()}, nil
		}
	}

	created, failed := s.storeChunks(ctx, input, chunks)

	result := &IngestResult{Status: IngestStatusCompleted, ChunksCreated: created}
	if failed > 0 {
		result.Status = IngestStatusFailed
		result.Error = fmt.Sprintf("%d of %d chunks failed to store", failed, len(chunks))
	}
	return result, nil
}

// storeChunks persists chunks with bounded embedding fan-out. Chunk order
// is carried by ChunkIndex, so insertion order does not matter.
func (s *KnowledgeService) storeChunks(ctx context.Context, input IngestDocumentInput, chunks []Chunk) (created, failed int) {
	var mu sync.Mutex
	var wg sync.WaitGroup

	store := func(c Chunk) {
		defer wg.Done()

		title := input.Name
		if len(chunks) > 1 {
			title = fmt.Sprintf("%s (part %d)", input.Name, c.Index+1)
		}
		chunk := &domain.KnowledgeChunk{
			ID:          s.uuidGen.NewString(),
			Category:    input.Category,
			SourceID:    input.SourceID,
			ChunkIndex:  c.Index,
			Title:       title,
			Content:     c.Text,
			Keywords:    extractKeywords(c.Text, s.cfg.KeywordCount),
			Source:      fmt.Sprintf("%s (part %d of %d)", input.Name, c.Index+1, len(chunks)),
			LastUpdated: time.Now().UTC(),
		}
		if outcome := s.tryEmbed(ctx, embedText(chunk.Title, chunk.Content)); outcome.Embedded {
			chunk.Embedding = outcome.Vector
		}

		err := s.repo.Insert(ctx, chunk)
		mu.Lock()
		if err != nil {
			failed++
		} else {
			created++
		}
		mu.Unlock()
	}

	pool, err := ants.NewPool(s.cfg.EmbedFanOut)
	if err != nil {
		// Degrade to sequential processing.
		for _, c := range chunks {
			wg.Add(1)
			store(c)
		}
		return created, failed
	}
	defer pool.Release()

	for _, c := range chunks {
		c := c
		wg.Add(1)
		if err := pool.Submit(func() { store(c) }); err != nil {
			store(c)
		}
	}
	wg.Wait()
	return created, failed
}

// DeleteBySource removes all chunks for a source document. Deleting a
// never-ingested source is a no-op returning 0.
func (s *KnowledgeService) DeleteBySource(ctx context.Context, sourceID string) (int, error) {
	if sourceID == "" {
		return 0, domain.ErrMissingRequiredField
	}
	return s.repo.DeleteBySource(ctx, sourceID)
}

// Status reports whether a source document has been ingested.
func (s *KnowledgeService) Status(ctx context.Context, sourceID string) (*SourceStatus, error) {
	if sourceID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	count, err := s.repo.CountBySource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return &SourceStatus{IsIngested: count > 0, ChunkCount: count}, nil
}

// MigrateMissingEmbeddings scans chunks without an embedding and attempts
// a backfill per chunk. Migrated and Failed counts are independent; one
// chunk's failure never aborts the scan.
func (s *KnowledgeService) MigrateMissingEmbeddings(ctx context.Context) (*MigrationResult, error) {
	missing, err := s.repo.ListMissingEmbedding(ctx)
	if err != nil {
		return nil, err
	}

	result := &MigrationResult{Scanned: len(missing)}
	for _, chunk := range missing {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		outcome := s.tryEmbed(ctx, embedText(chunk.Title, chunk.Content))
		if !outcome.Embedded {
			result.Failed++
			continue
		}
		if err := s.repo.UpdateEmbedding(ctx, chunk.ID, outcome.Vector); err != nil {
			result.Failed++
			continue
		}
		result.Migrated++
	}
	return result, nil
}

func embedText(title, content string) string {
	if title == "" {
		return content
	}
	return title + "\n\n" + content
}
