package models

import "time"

// EditLock is a time-bounded mutual-exclusion claim on a resource. At most
// one non-expired lock exists per resource id at any instant. A lock is dead
// once now is past ExpiresAt; dead locks are purged lazily on access or by
// the periodic sweep.
type EditLock struct {
	ResourceID string    `json:"resource_id"`
	HolderID   string    `json:"holder_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the lock is dead at the given instant.
func (l *EditLock) ExpiredAt(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// LockStats summarizes lock manager state for operational visibility.
type LockStats struct {
	Total    int            `json:"total"`
	Expired  int            `json:"expired"`
	Active   int            `json:"active"`
	ByHolder map[string]int `json:"by_holder"`
}
