package domain

import "time"

// SourceDocument is a registered raw document. Its bytes live in object
// storage under StorageKey; its searchable content lives in knowledge
// chunks keyed by the document ID.
type SourceDocument struct {
	ID         string
	Name       string
	Category   Category
	StorageKey string
	PageCount  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateSourceDocument validates a SourceDocument before persistence.
func ValidateSourceDocument(d *SourceDocument) error {
	if d == nil {
		return ErrMissingRequiredField
	}
	if d.ID == "" || d.Name == "" || d.StorageKey == "" {
		return ErrMissingRequiredField
	}
	if !IsValidCategory(d.Category) {
		return ErrInvalidCategory
	}
	return nil
}
