package records

import (
	"context"
	"encoding/json"
	"fmt"

	"lorehold/internal/domain/models"
	"lorehold/internal/domain/repositories"
)

// WorldRepository persists worlds through the generic store.
type WorldRepository struct {
	store repositories.Store
}

// NewWorldRepository creates a world repository.
func NewWorldRepository(store repositories.Store) *WorldRepository {
	return &WorldRepository{store: store}
}

// Create persists a new world
func (r *WorldRepository) Create(ctx context.Context, world *models.World) error {
	return r.put(ctx, world)
}

// GetByID retrieves a world by ID
func (r *WorldRepository) GetByID(ctx context.Context, id string) (*models.World, error) {
	record, err := r.store.Get(ctx, repositories.CollectionWorlds, id)
	if err != nil {
		return nil, fmt.Errorf("get world: %w", err)
	}

	var world models.World
	if err := json.Unmarshal(record, &world); err != nil {
		return nil, fmt.Errorf("decode world %s: %w", id, err)
	}
	return &world, nil
}

// Update replaces an existing world record
func (r *WorldRepository) Update(ctx context.Context, world *models.World) error {
	return r.put(ctx, world)
}

// Delete removes a world record
func (r *WorldRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, repositories.CollectionWorlds, id); err != nil {
		return fmt.Errorf("delete world: %w", err)
	}
	return nil
}

// ListByOwner lists worlds owned by a user
func (r *WorldRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.World, error) {
	return r.list(ctx, func(w *models.World) bool { return w.OwnerID == ownerID })
}

// ListByGameSystem lists worlds referencing a game system
func (r *WorldRepository) ListByGameSystem(ctx context.Context, gameSystemID string) ([]models.World, error) {
	return r.list(ctx, func(w *models.World) bool { return w.GameSystemID == gameSystemID })
}

func (r *WorldRepository) put(ctx context.Context, world *models.World) error {
	record, err := json.Marshal(world)
	if err != nil {
		return fmt.Errorf("encode world: %w", err)
	}
	if err := r.store.Put(ctx, repositories.CollectionWorlds, world.ID, record); err != nil {
		return fmt.Errorf("put world: %w", err)
	}
	return nil
}

func (r *WorldRepository) list(ctx context.Context, keep func(*models.World) bool) ([]models.World, error) {
	recs, err := r.store.List(ctx, repositories.CollectionWorlds)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}

	worlds := make([]models.World, 0, len(recs))
	for _, record := range recs {
		var world models.World
		if err := json.Unmarshal(record, &world); err != nil {
			return nil, fmt.Errorf("decode world: %w", err)
		}
		if keep(&world) {
			worlds = append(worlds, world)
		}
	}
	return worlds, nil
}
