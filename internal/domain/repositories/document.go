package repositories

import (
	"context"

	"lorehold/internal/domain/models"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create persists a new document
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by ID, active or not
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// Update replaces an existing document record
	Update(ctx context.Context, doc *models.Document) error

	// ListByGameSystem lists every document of a game system, including
	// soft-deleted ones
	ListByGameSystem(ctx context.Context, gameSystemID string) ([]models.Document, error)

	// ListActiveByGameSystem lists only active documents of a game system
	ListActiveByGameSystem(ctx context.Context, gameSystemID string) ([]models.Document, error)

	// ListVersions lists documents of a game system sharing a display name,
	// any active state, in no particular order
	ListVersions(ctx context.Context, gameSystemID, displayName string) ([]models.Document, error)
}
