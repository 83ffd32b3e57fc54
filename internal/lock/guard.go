package lock

import "lorehold/internal/domain"

// Guard is the mutation conflict check consulted by every write path on a
// game system or its documents. The lock granularity is coarse: the game
// system id is the resource key for the whole aggregate. Acquiring and
// releasing the lock itself is exempt.
type Guard struct {
	manager *Manager
}

// NewGuard creates a guard over the given manager.
func NewGuard(manager *Manager) *Guard {
	return &Guard{manager: manager}
}

// CheckWrite returns a conflict error when the game system's lease is held
// by a different user. An absent lease, or one belonging to the acting user,
// passes.
func (g *Guard) CheckWrite(gameSystemID, userID string) error {
	l := g.manager.GetLock(gameSystemID)
	if l == nil || l.HolderID == userID {
		return nil
	}
	return &domain.LockConflictError{
		ResourceID: gameSystemID,
		HolderID:   l.HolderID,
		ExpiresAt:  l.ExpiresAt,
	}
}
