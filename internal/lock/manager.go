// Package lock implements the TTL-lease coordination core that serializes
// conflicting edits to a game-system aggregate. One lease per game system
// governs the system and every document beneath it; there is no per-document
// lock and no waiter queue. Losing callers receive a conflict and retry
// externally.
package lock

import (
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"lorehold/internal/clock"
	"lorehold/internal/domain"
	"lorehold/internal/domain/models"
)

// shardCount trades memory for contention: check-then-act sequences run
// under a mutex scoped to the resource's shard, not the whole collection.
const shardCount = 32

type shard struct {
	mu    sync.Mutex
	locks map[string]*models.EditLock
}

// Manager owns the mapping from resource id to lease. All state is
// in-process; expiry is the only cancellation mechanism. Lock state
// transitions are linearizable per resource id.
type Manager struct {
	shards     [shardCount]shard
	clock      clock.Clock
	defaultTTL time.Duration
	logger     *slog.Logger
}

// NewManager creates a lock manager. ttl is the lease duration applied when
// a caller does not request one.
func NewManager(clk clock.Clock, ttl time.Duration, logger *slog.Logger) *Manager {
	m := &Manager{
		clock:      clk,
		defaultTTL: ttl,
		logger:     logger,
	}
	for i := range m.shards {
		m.shards[i].locks = make(map[string]*models.EditLock)
	}
	return m
}

func (m *Manager) shardFor(resourceID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(resourceID))
	return &m.shards[h.Sum32()%shardCount]
}

func (m *Manager) ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return m.defaultTTL
	}
	return ttl
}

// Acquire claims or re-claims the lease on a resource. If a live lease is
// held by a different holder it fails with a conflict reporting the existing
// expiry. A same-holder re-acquire replaces the lease outright rather than
// extending it.
func (m *Manager) Acquire(resourceID, holderID string, ttl time.Duration) (*models.EditLock, error) {
	s := m.shardFor(resourceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := m.clock.Now()
	if existing, ok := s.locks[resourceID]; ok && !existing.ExpiredAt(now) && existing.HolderID != holderID {
		return nil, &domain.LockConflictError{
			ResourceID: resourceID,
			HolderID:   existing.HolderID,
			ExpiresAt:  existing.ExpiresAt,
		}
	}

	l := &models.EditLock{
		ResourceID: resourceID,
		HolderID:   holderID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(m.ttlOrDefault(ttl)),
	}
	s.locks[resourceID] = l

	m.logger.Debug("lock acquired",
		"resource_id", resourceID,
		"holder_id", holderID,
		"expires_at", l.ExpiresAt,
	)

	cp := *l
	return &cp, nil
}

// Release removes the caller's lease. Releasing a missing or already expired
// lease is a no-op; releasing someone else's live lease is forbidden.
func (m *Manager) Release(resourceID, holderID string) error {
	s := m.shardFor(resourceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.locks[resourceID]
	if !ok {
		return nil
	}
	if existing.ExpiredAt(m.clock.Now()) {
		delete(s.locks, resourceID)
		return nil
	}
	if existing.HolderID != holderID {
		return &domain.ForbiddenError{Message: "lock is held by another user"}
	}

	delete(s.locks, resourceID)
	m.logger.Debug("lock released", "resource_id", resourceID, "holder_id", holderID)
	return nil
}

// Renew extends the caller's lease from now. It fails with a conflict when
// no live lease exists and is forbidden for non-holders.
func (m *Manager) Renew(resourceID, holderID string, ttl time.Duration) (*models.EditLock, error) {
	s := m.shardFor(resourceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := m.clock.Now()
	existing, ok := s.locks[resourceID]
	if !ok || existing.ExpiredAt(now) {
		if ok {
			delete(s.locks, resourceID)
		}
		return nil, &domain.ConflictError{
			Message:      "no lock held on resource",
			ResourceType: "lock",
			ResourceID:   resourceID,
		}
	}
	if existing.HolderID != holderID {
		return nil, &domain.ForbiddenError{Message: "lock is held by another user"}
	}

	existing.ExpiresAt = now.Add(m.ttlOrDefault(ttl))

	m.logger.Debug("lock renewed",
		"resource_id", resourceID,
		"holder_id", holderID,
		"expires_at", existing.ExpiresAt,
	)

	cp := *existing
	return &cp, nil
}

// GetLock returns the live lease on a resource, or nil. An expired lease is
// purged as a side effect.
func (m *Manager) GetLock(resourceID string) *models.EditLock {
	s := m.shardFor(resourceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.locks[resourceID]
	if !ok {
		return nil
	}
	if existing.ExpiredAt(m.clock.Now()) {
		delete(s.locks, resourceID)
		return nil
	}

	cp := *existing
	return &cp
}

// IsLocked reports whether a live lease exists on the resource.
func (m *Manager) IsLocked(resourceID string) bool {
	return m.GetLock(resourceID) != nil
}

// IsLockedByUser reports whether the resource's live lease belongs to holderID.
func (m *Manager) IsLockedByUser(resourceID, holderID string) bool {
	l := m.GetLock(resourceID)
	return l != nil && l.HolderID == holderID
}

// ListAll purges expired leases and returns the live ones.
func (m *Manager) ListAll() []models.EditLock {
	return m.collect(func(l *models.EditLock) bool { return true })
}

// ListForHolder purges expired leases and returns the live ones owned by holderID.
func (m *Manager) ListForHolder(holderID string) []models.EditLock {
	return m.collect(func(l *models.EditLock) bool { return l.HolderID == holderID })
}

func (m *Manager) collect(keep func(*models.EditLock) bool) []models.EditLock {
	var out []models.EditLock
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		now := m.clock.Now()
		for id, l := range s.locks {
			if l.ExpiredAt(now) {
				delete(s.locks, id)
				continue
			}
			if keep(l) {
				out = append(out, *l)
			}
		}
		s.mu.Unlock()
	}
	return out
}

// ForceRelease removes a lease unconditionally, without a holder check.
// Administrative bypass.
func (m *Manager) ForceRelease(resourceID string) {
	s := m.shardFor(resourceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locks[resourceID]; ok {
		delete(s.locks, resourceID)
		m.logger.Info("lock force-released", "resource_id", resourceID)
	}
}

// ReleaseAllForHolder removes every lease owned by holderID, expired or not.
func (m *Manager) ReleaseAllForHolder(holderID string) int {
	released := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for id, l := range s.locks {
			if l.HolderID == holderID {
				delete(s.locks, id)
				released++
			}
		}
		s.mu.Unlock()
	}
	if released > 0 {
		m.logger.Debug("released all locks for holder", "holder_id", holderID, "count", released)
	}
	return released
}

// Stats counts total, expired and active leases plus a per-holder tally of
// live leases. Expired leases are counted, not purged, so the numbers
// reflect what the sweep would reclaim.
func (m *Manager) Stats() models.LockStats {
	stats := models.LockStats{ByHolder: make(map[string]int)}
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		now := m.clock.Now()
		for _, l := range s.locks {
			stats.Total++
			if l.ExpiredAt(now) {
				stats.Expired++
				continue
			}
			stats.Active++
			stats.ByHolder[l.HolderID]++
		}
		s.mu.Unlock()
	}
	return stats
}

// Sweep purges every expired lease and returns how many were removed. Lazy
// purge on access keeps the manager correct without it; sweeping just
// reclaims memory proactively.
func (m *Manager) Sweep() int {
	purged := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		now := m.clock.Now()
		for id, l := range s.locks {
			if l.ExpiredAt(now) {
				delete(s.locks, id)
				purged++
			}
		}
		s.mu.Unlock()
	}
	if purged > 0 {
		m.logger.Debug("swept expired locks", "count", purged)
	}
	return purged
}
