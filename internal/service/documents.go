package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paperbase/paperbase/internal/domain"
	"github.com/paperbase/paperbase/internal/pagination"
)

// DocumentRepositoryInterface defines the registry operations for source documents.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.SourceDocument) error
	GetByID(ctx context.Context, id string) (*domain.SourceDocument, error)
	GetByName(ctx context.Context, name string) (*domain.SourceDocument, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.SourceDocument], error)
	Delete(ctx context.Context, id string) error
}

// DocumentStorage defines the object store operations for raw documents.
type DocumentStorage interface {
	PutObject(ctx context.Context, key string, content []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// RegisterDocumentInput registers a raw document in the store.
type RegisterDocumentInput struct {
	Name     string
	Category domain.Category
	Content  []byte
}

// DocumentService owns the source document registry and raw storage.
type DocumentService struct {
	repo    DocumentRepositoryInterface
	storage DocumentStorage
	uuidGen UUIDGenerator
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(repo DocumentRepositoryInterface, storage DocumentStorage) *DocumentService {
	return &DocumentService{
		repo:    repo,
		storage: storage,
		uuidGen: &DefaultUUIDGenerator{},
	}
}

// WithUUIDGenerator overrides the UUID generator, used in tests.
func (s *DocumentService) WithUUIDGenerator(gen UUIDGenerator) *DocumentService {
	s.uuidGen = gen
	return s
}

// Register uploads the raw document bytes and records it in the registry.
// The document name is unique; re-registering an existing name fails.
func (s *DocumentService) Register(ctx context.Context, input RegisterDocumentInput) (*domain.SourceDocument, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if !domain.IsValidCategory(input.Category) {
		return nil, domain.ErrInvalidCategory
	}
	if len(input.Content) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "document content cannot be empty")
	}

	existing, err := s.repo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDocumentAlreadyExists
	}

	id := s.uuidGen.NewString()
	now := time.Now().UTC()
	doc := &domain.SourceDocument{
		ID:         id,
		Name:       name,
		Category:   input.Category,
		StorageKey: fmt.Sprintf("documents/%s.pdf", id),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.storage.PutObject(ctx, doc.StorageKey, input.Content, "application/pdf"); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to store document", err)
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		// The upload is orphaned without a registry row, clean it up.
		_ = s.storage.DeleteObject(ctx, doc.StorageKey)
		return nil, err
	}

	return doc, nil
}

// Get returns a registered document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.SourceDocument, error) {
	return s.repo.GetByID(ctx, id)
}

// List pages through registered documents, newest first.
func (s *DocumentService) List(ctx context.Context, cursor string, limit int) (*pagination.PageResult[*domain.SourceDocument], error) {
	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor")
	}
	return s.repo.ListWithCursor(ctx, decoded, limit)
}

// DownloadURL returns a presigned URL for the raw document.
func (s *DocumentService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate download URL", err)
	}
	return url, nil
}
