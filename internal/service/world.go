package service

import (
	"context"
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
)

// worldService implements the WorldService interface. Worlds are plain CRUD;
// the lock guard does not apply to them.
type worldService struct {
	worlds  repositories.WorldRepository
	systems repositories.GameSystemRepository
	logger  *slog.Logger
}

// NewWorldService creates a new world service
func NewWorldService(
	worlds repositories.WorldRepository,
	systems repositories.GameSystemRepository,
	logger *slog.Logger,
) services.WorldService {
	return &worldService{
		worlds:  worlds,
		systems: systems,
		logger:  logger,
	}
}

// CreateWorld creates a world referencing an existing game system
func (s *worldService) CreateWorld(ctx context.Context, req *services.CreateWorldRequest) (*models.World, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.systems.GetByID(ctx, req.GameSystemID); err != nil {
		return nil, fmt.Errorf("invalid game system: %w", err)
	}

	now := time.Now()
	world := &models.World{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		GameSystemID: req.GameSystemID,
		OwnerID:      req.OwnerID,
		Description:  req.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.worlds.Create(ctx, world); err != nil {
		return nil, err
	}

	s.logger.Info("world created",
		"id", world.ID,
		"name", world.Name,
		"game_system_id", world.GameSystemID,
	)

	return world, nil
}

// GetWorld retrieves a world by ID
func (s *worldService) GetWorld(ctx context.Context, id string) (*models.World, error) {
	return s.worlds.GetByID(ctx, id)
}

// ListWorlds lists worlds owned by a user
func (s *worldService) ListWorlds(ctx context.Context, ownerID string) ([]models.World, error) {
	return s.worlds.ListByOwner(ctx, ownerID)
}

// UpdateWorld updates a world's name and description
func (s *worldService) UpdateWorld(ctx context.Context, id, userID string, req *services.UpdateWorldRequest) (*models.World, error) {
	world, err := s.worlds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name, config.MaxWorldNameLength); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		world.Name = name
	}
	if req.Description != nil {
		world.Description = *req.Description
	}
	world.UpdatedAt = time.Now()

	if err := s.worlds.Update(ctx, world); err != nil {
		return nil, err
	}

	s.logger.Info("world updated", "id", world.ID, "user_id", userID)
	return world, nil
}

// DeleteWorld removes a world
func (s *worldService) DeleteWorld(ctx context.Context, id, userID string) error {
	if _, err := s.worlds.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.worlds.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("world deleted", "id", id, "user_id", userID)
	return nil
}

// validateCreateRequest validates a create world request
func (s *worldService) validateCreateRequest(req *services.CreateWorldRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.GameSystemID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxWorldNameLength),
		),
	)
}
