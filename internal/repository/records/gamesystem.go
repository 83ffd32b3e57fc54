// Package records implements the typed repositories on top of the generic
// keyed-collection store. Records are stored as JSON blobs; filtered queries
// read a live snapshot of the collection and filter in process.
package records

import (
	"context"
	"encoding/json"
	"fmt"

	"lorehold/internal/domain/models"
	"lorehold/internal/domain/repositories"
)

// GameSystemRepository persists game systems through the generic store.
type GameSystemRepository struct {
	store repositories.Store
}

// NewGameSystemRepository creates a game system repository.
func NewGameSystemRepository(store repositories.Store) *GameSystemRepository {
	return &GameSystemRepository{store: store}
}

// Create persists a new game system
func (r *GameSystemRepository) Create(ctx context.Context, system *models.GameSystem) error {
	return r.put(ctx, system)
}

// GetByID retrieves a game system by ID
func (r *GameSystemRepository) GetByID(ctx context.Context, id string) (*models.GameSystem, error) {
	record, err := r.store.Get(ctx, repositories.CollectionGameSystems, id)
	if err != nil {
		return nil, fmt.Errorf("get game system: %w", err)
	}

	var system models.GameSystem
	if err := json.Unmarshal(record, &system); err != nil {
		return nil, fmt.Errorf("decode game system %s: %w", id, err)
	}
	return &system, nil
}

// Update replaces an existing game system record
func (r *GameSystemRepository) Update(ctx context.Context, system *models.GameSystem) error {
	return r.put(ctx, system)
}

// Delete removes a game system record
func (r *GameSystemRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, repositories.CollectionGameSystems, id); err != nil {
		return fmt.Errorf("delete game system: %w", err)
	}
	return nil
}

// ListByOwner lists game systems owned by a user
func (r *GameSystemRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.GameSystem, error) {
	return r.list(ctx, func(s *models.GameSystem) bool { return s.OwnerID == ownerID })
}

// ListPublic lists game systems marked public
func (r *GameSystemRepository) ListPublic(ctx context.Context) ([]models.GameSystem, error) {
	return r.list(ctx, func(s *models.GameSystem) bool { return s.IsPublic })
}

// ListChildren lists game systems deriving from the given system
func (r *GameSystemRepository) ListChildren(ctx context.Context, parentID string) ([]models.GameSystem, error) {
	return r.list(ctx, func(s *models.GameSystem) bool {
		return s.ParentSystemID != nil && *s.ParentSystemID == parentID
	})
}

func (r *GameSystemRepository) put(ctx context.Context, system *models.GameSystem) error {
	record, err := json.Marshal(system)
	if err != nil {
		return fmt.Errorf("encode game system: %w", err)
	}
	if err := r.store.Put(ctx, repositories.CollectionGameSystems, system.ID, record); err != nil {
		return fmt.Errorf("put game system: %w", err)
	}
	return nil
}

func (r *GameSystemRepository) list(ctx context.Context, keep func(*models.GameSystem) bool) ([]models.GameSystem, error) {
	recs, err := r.store.List(ctx, repositories.CollectionGameSystems)
	if err != nil {
		return nil, fmt.Errorf("list game systems: %w", err)
	}

	systems := make([]models.GameSystem, 0, len(recs))
	for _, record := range recs {
		var system models.GameSystem
		if err := json.Unmarshal(record, &system); err != nil {
			return nil, fmt.Errorf("decode game system: %w", err)
		}
		if keep(&system) {
			systems = append(systems, system)
		}
	}
	return systems, nil
}
