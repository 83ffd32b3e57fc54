package handler

import (
	"log/slog"
	"net/http"
	"time"

	"lorehold/internal/httputil"
	"lorehold/internal/lock"
)

// LockHandler exposes the lock manager. Acquiring and releasing a lease is
// exempt from the mutation conflict guard: these endpoints are the guard.
type LockHandler struct {
	manager *lock.Manager
	logger  *slog.Logger
}

// NewLockHandler creates a new lock handler
func NewLockHandler(manager *lock.Manager, logger *slog.Logger) *LockHandler {
	return &LockHandler{
		manager: manager,
		logger:  logger,
	}
}

// lockRequest optionally overrides the lease TTL in seconds.
type lockRequest struct {
	TTLSeconds int `json:"ttl_seconds,omitempty"`
}

func (req *lockRequest) ttl() time.Duration {
	return time.Duration(req.TTLSeconds) * time.Second
}

// AcquireLock claims the edit lease on a game system
// POST /api/systems/{id}/lock
func (h *LockHandler) AcquireLock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	l, err := h.manager.Acquire(r.PathValue("id"), httputil.GetUserID(r), req.ttl())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, l)
}

// RenewLock extends the caller's lease from now
// PUT /api/systems/{id}/lock
func (h *LockHandler) RenewLock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	l, err := h.manager.Renew(r.PathValue("id"), httputil.GetUserID(r), req.ttl())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, l)
}

// ReleaseLock releases the caller's lease
// DELETE /api/systems/{id}/lock
func (h *LockHandler) ReleaseLock(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Release(r.PathValue("id"), httputil.GetUserID(r)); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetLock reports the live lease on a game system, if any
// GET /api/systems/{id}/lock
func (h *LockHandler) GetLock(w http.ResponseWriter, r *http.Request) {
	l := h.manager.GetLock(r.PathValue("id"))
	if l == nil {
		httputil.RespondError(w, http.StatusNotFound, "no lock held on resource")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, l)
}

// ListLocks lists live leases, optionally filtered by holder
// GET /api/locks[?holder=<id>]
func (h *LockHandler) ListLocks(w http.ResponseWriter, r *http.Request) {
	holder := r.URL.Query().Get("holder")

	if holder != "" {
		httputil.RespondJSON(w, http.StatusOK, h.manager.ListForHolder(holder))
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.manager.ListAll())
}

// LockStats reports lease counts for operational visibility
// GET /api/locks/stats
func (h *LockHandler) LockStats(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.manager.Stats())
}

// ForceReleaseLock removes a lease without a holder check (administrative)
// DELETE /api/locks/{resource}
func (h *LockHandler) ForceReleaseLock(w http.ResponseWriter, r *http.Request) {
	h.manager.ForceRelease(r.PathValue("resource"))
	w.WriteHeader(http.StatusNoContent)
}

// ReleaseMyLocks releases every lease the caller holds
// DELETE /api/locks
func (h *LockHandler) ReleaseMyLocks(w http.ResponseWriter, r *http.Request) {
	released := h.manager.ReleaseAllForHolder(httputil.GetUserID(r))
	httputil.RespondJSON(w, http.StatusOK, map[string]int{"released": released})
}
