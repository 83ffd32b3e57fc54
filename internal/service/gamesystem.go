package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"lorehold/internal/config"
	"lorehold/internal/domain"
	"lorehold/internal/domain/models"
	"lorehold/internal/domain/repositories"
	"lorehold/internal/domain/services"
	"lorehold/internal/lock"
)

// gameSystemService implements the GameSystemService interface
type gameSystemService struct {
	systems repositories.GameSystemRepository
	worlds  repositories.WorldRepository
	guard   *lock.Guard
	locks   *lock.Manager
	keyed   keyedMutex
	logger  *slog.Logger
}

// NewGameSystemService creates a new game system service
func NewGameSystemService(
	systems repositories.GameSystemRepository,
	worlds repositories.WorldRepository,
	guard *lock.Guard,
	locks *lock.Manager,
	logger *slog.Logger,
) services.GameSystemService {
	return &gameSystemService{
		systems: systems,
		worlds:  worlds,
		guard:   guard,
		locks:   locks,
		logger:  logger,
	}
}

// CreateGameSystem creates a new game system
func (s *gameSystemService) CreateGameSystem(ctx context.Context, req *services.CreateGameSystemRequest) (*models.GameSystem, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	name := strings.TrimSpace(req.Name)

	if req.ParentSystemID != nil {
		if _, err := s.systems.GetByID(ctx, *req.ParentSystemID); err != nil {
			return nil, fmt.Errorf("invalid parent system: %w", err)
		}
	}

	// Name uniqueness per owner is check-then-act; serialize it per owner.
	unlock := s.keyed.lock("owner:" + req.OwnerID)
	defer unlock()

	if err := s.checkNameAvailable(ctx, req.OwnerID, name, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	system := &models.GameSystem{
		ID:               uuid.NewString(),
		Name:             name,
		OwnerID:          req.OwnerID,
		Description:      req.Description,
		ParentSystemID:   req.ParentSystemID,
		ValidationSchema: req.ValidationSchema,
		SyncWithParent:   req.SyncWithParent,
		IsPublic:         req.IsPublic,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.systems.Create(ctx, system); err != nil {
		return nil, err
	}

	s.logger.Info("game system created",
		"id", system.ID,
		"name", system.Name,
		"owner_id", system.OwnerID,
	)

	return system, nil
}

// GetGameSystem retrieves a game system by ID
func (s *gameSystemService) GetGameSystem(ctx context.Context, id string) (*models.GameSystem, error) {
	return s.systems.GetByID(ctx, id)
}

// ListGameSystems lists systems owned by a user
func (s *gameSystemService) ListGameSystems(ctx context.Context, ownerID string) ([]models.GameSystem, error) {
	return s.systems.ListByOwner(ctx, ownerID)
}

// ListPublicGameSystems lists systems visible to everyone
func (s *gameSystemService) ListPublicGameSystems(ctx context.Context) ([]models.GameSystem, error) {
	return s.systems.ListPublic(ctx)
}

// UpdateGameSystem updates a game system. The edit lock is consulted first;
// the model is collaborative, so any caller who holds the lock (or faces
// none) may mutate.
func (s *gameSystemService) UpdateGameSystem(ctx context.Context, id, userID string, req *services.UpdateGameSystemRequest) (*models.GameSystem, error) {
	system, err := s.systems.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.guard.CheckWrite(id, userID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name, config.MaxGameSystemNameLength); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if !strings.EqualFold(name, system.Name) {
			// Hold the per-owner mutex through the persist so a concurrent
			// rename cannot slip between the check and the write.
			unlock := s.keyed.lock("owner:" + system.OwnerID)
			defer unlock()
			if err := s.checkNameAvailable(ctx, system.OwnerID, name, system.ID); err != nil {
				return nil, err
			}
		}
		system.Name = name
	}

	if req.ParentSystemID != nil {
		if err := s.checkDerivationCycle(ctx, system.ID, *req.ParentSystemID); err != nil {
			return nil, err
		}
		system.ParentSystemID = req.ParentSystemID
	}

	if req.Description != nil {
		system.Description = *req.Description
	}
	if req.ValidationSchema != nil {
		system.ValidationSchema = req.ValidationSchema
	}
	if req.SyncWithParent != nil {
		system.SyncWithParent = *req.SyncWithParent
	}
	if req.IsPublic != nil {
		system.IsPublic = *req.IsPublic
	}
	system.UpdatedAt = time.Now()

	if err := s.systems.Update(ctx, system); err != nil {
		return nil, err
	}

	s.logger.Info("game system updated",
		"id", system.ID,
		"name", system.Name,
		"user_id", userID,
	)

	return system, nil
}

// DeleteGameSystem deletes a game system that has no derived systems and no
// referencing worlds.
func (s *gameSystemService) DeleteGameSystem(ctx context.Context, id, userID string) error {
	if _, err := s.systems.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.guard.CheckWrite(id, userID); err != nil {
		return err
	}

	children, err := s.systems.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("game system has %d derived systems", len(children)),
			ResourceType: "game_system",
			ResourceID:   id,
		}
	}

	worlds, err := s.worlds.ListByGameSystem(ctx, id)
	if err != nil {
		return err
	}
	if len(worlds) > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("game system is referenced by %d worlds", len(worlds)),
			ResourceType: "game_system",
			ResourceID:   id,
		}
	}

	if err := s.systems.Delete(ctx, id); err != nil {
		return err
	}

	// The aggregate is gone; any lease on it is meaningless now.
	s.locks.ForceRelease(id)

	s.logger.Info("game system deleted", "id", id, "user_id", userID)
	return nil
}

// checkNameAvailable enforces case-insensitive name uniqueness among systems
// owned by the same user. excludeID skips the system being renamed.
func (s *gameSystemService) checkNameAvailable(ctx context.Context, ownerID, name, excludeID string) error {
	owned, err := s.systems.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	for i := range owned {
		if owned[i].ID == excludeID {
			continue
		}
		if strings.EqualFold(owned[i].Name, name) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("game system named '%s' already exists", name),
				ResourceType: "game_system",
				ResourceID:   owned[i].ID,
			}
		}
	}
	return nil
}

// checkDerivationCycle refuses a re-parent that would make a system derive,
// directly or transitively, from itself. The walk tolerates dangling parent
// references; those terminate the chain.
func (s *gameSystemService) checkDerivationCycle(ctx context.Context, systemID, newParentID string) error {
	visited := map[string]bool{}
	current := newParentID
	for current != "" && !visited[current] {
		visited[current] = true
		if current == systemID {
			return fmt.Errorf("%w: parent system would create a derivation cycle", domain.ErrValidation)
		}
		parent, err := s.systems.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				if current == newParentID {
					return fmt.Errorf("invalid parent system: %w", err)
				}
				return nil
			}
			return err
		}
		if parent.ParentSystemID == nil {
			return nil
		}
		current = *parent.ParentSystemID
	}
	return nil
}

// validateCreateRequest validates a create game system request
func (s *gameSystemService) validateCreateRequest(req *services.CreateGameSystemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxGameSystemNameLength),
		),
	)
}

// validateName validates a trimmed resource name
func validateName(name string, maxLen int) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > maxLen {
		return fmt.Errorf("name exceeds %d characters", maxLen)
	}
	return nil
}
