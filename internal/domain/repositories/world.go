package repositories

import (
	"context"

	"lorehold/internal/domain/models"
)

// WorldRepository defines data access operations for worlds
type WorldRepository interface {
	// Create persists a new world
	Create(ctx context.Context, world *models.World) error

	// GetByID retrieves a world by ID
	GetByID(ctx context.Context, id string) (*models.World, error)

	// Update replaces an existing world record
	Update(ctx context.Context, world *models.World) error

	// Delete removes a world record
	Delete(ctx context.Context, id string) error

	// ListByOwner lists worlds owned by a user
	ListByOwner(ctx context.Context, ownerID string) ([]models.World, error)

	// ListByGameSystem lists worlds referencing a game system
	ListByGameSystem(ctx context.Context, gameSystemID string) ([]models.World, error)
}
