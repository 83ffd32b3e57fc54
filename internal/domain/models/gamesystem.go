package models

import (
	"encoding/json"
	"time"
)

// GameSystem is a ruleset that documents attach to and worlds reference.
// ParentSystemID is a weak reference (id only) to the system this one derives
// from; resolution happens by lookup, never by embedding the parent record.
type GameSystem struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	OwnerID          string          `json:"owner_id"`
	Description      string          `json:"description,omitempty"`
	ParentSystemID   *string         `json:"parent_system_id,omitempty"`
	ValidationSchema json.RawMessage `json:"validation_schema,omitempty"`
	SyncWithParent   bool            `json:"sync_with_parent"`
	IsPublic         bool            `json:"is_public"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// HasValidationSchema reports whether documents uploaded to this system
// should be checked against a JSON Schema.
func (g *GameSystem) HasValidationSchema() bool {
	return len(g.ValidationSchema) > 0 && string(g.ValidationSchema) != "null"
}
