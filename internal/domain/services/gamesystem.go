package services

import (
	"context"
	"encoding/json"

	"lorehold/internal/domain/models"
)

// GameSystemService handles game system business logic
type GameSystemService interface {
	// CreateGameSystem creates a new game system
	CreateGameSystem(ctx context.Context, req *CreateGameSystemRequest) (*models.GameSystem, error)

	// GetGameSystem retrieves a game system by ID
	GetGameSystem(ctx context.Context, id string) (*models.GameSystem, error)

	// ListGameSystems lists systems owned by a user
	ListGameSystems(ctx context.Context, ownerID string) ([]models.GameSystem, error)

	// ListPublicGameSystems lists systems visible to everyone
	ListPublicGameSystems(ctx context.Context) ([]models.GameSystem, error)

	// UpdateGameSystem updates a game system; the edit lock on the system is
	// consulted first
	UpdateGameSystem(ctx context.Context, id, userID string, req *UpdateGameSystemRequest) (*models.GameSystem, error)

	// DeleteGameSystem deletes a game system that has no derived systems and
	// no referencing worlds
	DeleteGameSystem(ctx context.Context, id, userID string) error
}

// CreateGameSystemRequest represents a game system creation request
type CreateGameSystemRequest struct {
	Name             string          `json:"name"`
	OwnerID          string          `json:"-"` // Set by handler from identity context
	Description      string          `json:"description,omitempty"`
	ParentSystemID   *string         `json:"parent_system_id,omitempty"`
	ValidationSchema json.RawMessage `json:"validation_schema,omitempty"`
	SyncWithParent   bool            `json:"sync_with_parent"`
	IsPublic         bool            `json:"is_public"`
}

// UpdateGameSystemRequest represents a game system update request.
// Nil fields are left unchanged.
type UpdateGameSystemRequest struct {
	Name             *string         `json:"name,omitempty"`
	Description      *string         `json:"description,omitempty"`
	ParentSystemID   *string         `json:"parent_system_id,omitempty"`
	ValidationSchema json.RawMessage `json:"validation_schema,omitempty"`
	SyncWithParent   *bool           `json:"sync_with_parent,omitempty"`
	IsPublic         *bool           `json:"is_public,omitempty"`
}
