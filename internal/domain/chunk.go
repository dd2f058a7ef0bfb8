package domain

import "time"

// Category classifies a chunk for filtered retrieval.
type Category string

const (
	CategoryGovernment Category = "government"
	CategoryInsurance  Category = "insurance"
	CategoryFinance    Category = "finance"
	CategoryPersonal   Category = "personal"
	CategoryGeneral    Category = "general"
)

// IsValidCategory checks if a Category is one of the known values.
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryGovernment, CategoryInsurance, CategoryFinance,
		CategoryPersonal, CategoryGeneral:
		return true
	}
	return false
}

// KnowledgeChunk is the retrievable unit: a bounded span of a source
// document's text, with keywords for lexical search and an optional
// embedding for similarity search. A nil Embedding means the chunk is
// retrievable through text search only.
type KnowledgeChunk struct {
	ID          string
	Category    Category
	SourceID    string // empty for chunks without an originating document
	ChunkIndex  int
	Title       string
	Content     string
	Keywords    []string
	Source      string // provenance, e.g. "report.pdf (part 3)"
	Embedding   []float32
	LastUpdated time.Time
}

// HasEmbedding reports whether the chunk is reachable through the vector path.
func (c *KnowledgeChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// ValidateChunk validates a KnowledgeChunk before persistence.
func ValidateChunk(c *KnowledgeChunk) error {
	if c == nil {
		return ErrMissingRequiredField
	}
	if c.ID == "" {
		return ErrMissingRequiredField
	}
	if c.Content == "" {
		return ErrEmptyChunkContent
	}
	if !IsValidCategory(c.Category) {
		return ErrInvalidCategory
	}
	if c.ChunkIndex < 0 {
		return ErrInvalidChunkIndex
	}
	return nil
}
