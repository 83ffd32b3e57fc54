package repositories

import (
	"context"

	"lorehold/internal/domain/models"
)

// GameSystemRepository defines data access operations for game systems
type GameSystemRepository interface {
	// Create persists a new game system
	Create(ctx context.Context, system *models.GameSystem) error

	// GetByID retrieves a game system by ID
	GetByID(ctx context.Context, id string) (*models.GameSystem, error)

	// Update replaces an existing game system record
	Update(ctx context.Context, system *models.GameSystem) error

	// Delete removes a game system record
	Delete(ctx context.Context, id string) error

	// ListByOwner lists game systems owned by a user
	ListByOwner(ctx context.Context, ownerID string) ([]models.GameSystem, error)

	// ListPublic lists game systems marked public
	ListPublic(ctx context.Context) ([]models.GameSystem, error)

	// ListChildren lists game systems whose parent is the given system
	ListChildren(ctx context.Context, parentID string) ([]models.GameSystem, error)
}
