package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCategory(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		valid    bool
	}{
		{"Government", CategoryGovernment, true},
		{"Insurance", CategoryInsurance, true},
		{"Finance", CategoryFinance, true},
		{"Personal", CategoryPersonal, true},
		{"General", CategoryGeneral, true},
		{"Unknown", Category("unknown"), false},
		{"Empty", Category(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidCategory(tt.category))
		})
	}
}

func validChunk() *KnowledgeChunk {
	return &KnowledgeChunk{
		ID:          "c1",
		Category:    CategoryGovernment,
		SourceID:    "d1",
		ChunkIndex:  0,
		Title:       "Tax rules",
		Content:     "Income below the exemption threshold is not taxed.",
		Keywords:    []string{"income", "exemption", "threshold"},
		LastUpdated: time.Now().UTC(),
	}
}

func TestValidateChunk(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateChunk(validChunk()))
	})

	t.Run("nil chunk", func(t *testing.T) {
		assert.ErrorIs(t, ValidateChunk(nil), ErrMissingRequiredField)
	})

	t.Run("missing id", func(t *testing.T) {
		c := validChunk()
		c.ID = ""
		assert.ErrorIs(t, ValidateChunk(c), ErrMissingRequiredField)
	})

	t.Run("empty content", func(t *testing.T) {
		c := validChunk()
		c.Content = ""
		assert.ErrorIs(t, ValidateChunk(c), ErrEmptyChunkContent)
	})

	t.Run("invalid category", func(t *testing.T) {
		c := validChunk()
		c.Category = "nope"
		assert.ErrorIs(t, ValidateChunk(c), ErrInvalidCategory)
	})

	t.Run("negative index", func(t *testing.T) {
		c := validChunk()
		c.ChunkIndex = -1
		assert.ErrorIs(t, ValidateChunk(c), ErrInvalidChunkIndex)
	})
}

func TestHasEmbedding(t *testing.T) {
	c := validChunk()
	assert.False(t, c.HasEmbedding())

	c.Embedding = make([]float32, EmbeddingDimensions)
	assert.True(t, c.HasEmbedding())
}

func TestValidateSourceDocument(t *testing.T) {
	doc := &SourceDocument{
		ID:         "d1",
		Name:       "tax-guide.pdf",
		Category:   CategoryGovernment,
		StorageKey: "documents/d1",
	}
	assert.NoError(t, ValidateSourceDocument(doc))

	doc.Name = ""
	assert.ErrorIs(t, ValidateSourceDocument(doc), ErrMissingRequiredField)

	doc.Name = "tax-guide.pdf"
	doc.Category = "misc"
	assert.ErrorIs(t, ValidateSourceDocument(doc), ErrInvalidCategory)
}
