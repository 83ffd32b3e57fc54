package models

import "time"

// World is a playable instance referencing a game system. Worlds carry no
// coordination logic of their own, but a game system cannot be deleted while
// worlds still reference it.
type World struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	GameSystemID string    `json:"game_system_id"`
	OwnerID      string    `json:"owner_id"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
