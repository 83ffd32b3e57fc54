package services

import (
	"context"

	"lorehold/internal/domain/models"
)

// WorldService handles world business logic. Worlds are plain CRUD; they
// carry no lock coordination.
type WorldService interface {
	// CreateWorld creates a world referencing an existing game system
	CreateWorld(ctx context.Context, req *CreateWorldRequest) (*models.World, error)

	// GetWorld retrieves a world by ID
	GetWorld(ctx context.Context, id string) (*models.World, error)

	// ListWorlds lists worlds owned by a user
	ListWorlds(ctx context.Context, ownerID string) ([]models.World, error)

	// UpdateWorld updates a world's name and description
	UpdateWorld(ctx context.Context, id, userID string, req *UpdateWorldRequest) (*models.World, error)

	// DeleteWorld removes a world
	DeleteWorld(ctx context.Context, id, userID string) error
}

// CreateWorldRequest represents a world creation request
type CreateWorldRequest struct {
	Name         string `json:"name"`
	GameSystemID string `json:"game_system_id"`
	OwnerID      string `json:"-"` // Set by handler from identity context
	Description  string `json:"description,omitempty"`
}

// UpdateWorldRequest represents a world update request
type UpdateWorldRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
