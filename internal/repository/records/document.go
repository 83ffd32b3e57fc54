package records

import (
	"context"
	"encoding/json"
	"fmt"

	"lorehold/internal/domain/models"
	"lorehold/internal/domain/repositories"
)

// DocumentRepository persists documents through the generic store.
type DocumentRepository struct {
	store repositories.Store
}

// NewDocumentRepository creates a document repository.
func NewDocumentRepository(store repositories.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// Create persists a new document
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.put(ctx, doc)
}

// GetByID retrieves a document by ID, active or not
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	record, err := r.store.Get(ctx, repositories.CollectionDocuments, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(record, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &doc, nil
}

// Update replaces an existing document record
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	return r.put(ctx, doc)
}

// ListByGameSystem lists every document of a game system, soft-deleted included
func (r *DocumentRepository) ListByGameSystem(ctx context.Context, gameSystemID string) ([]models.Document, error) {
	return r.list(ctx, func(d *models.Document) bool { return d.GameSystemID == gameSystemID })
}

// ListActiveByGameSystem lists only active documents of a game system
func (r *DocumentRepository) ListActiveByGameSystem(ctx context.Context, gameSystemID string) ([]models.Document, error) {
	return r.list(ctx, func(d *models.Document) bool {
		return d.GameSystemID == gameSystemID && d.Active
	})
}

// ListVersions lists documents of a game system sharing a display name
func (r *DocumentRepository) ListVersions(ctx context.Context, gameSystemID, displayName string) ([]models.Document, error) {
	return r.list(ctx, func(d *models.Document) bool {
		return d.GameSystemID == gameSystemID && d.DisplayName == displayName
	})
}

func (r *DocumentRepository) put(ctx context.Context, doc *models.Document) error {
	record, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := r.store.Put(ctx, repositories.CollectionDocuments, doc.ID, record); err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) list(ctx context.Context, keep func(*models.Document) bool) ([]models.Document, error) {
	recs, err := r.store.List(ctx, repositories.CollectionDocuments)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]models.Document, 0, len(recs))
	for _, record := range recs {
		var doc models.Document
		if err := json.Unmarshal(record, &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		if keep(&doc) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
