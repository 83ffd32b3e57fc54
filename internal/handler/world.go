package handler

import (
	"log/slog"
	"net/http"

	"lorehold/internal/domain/services"
	"lorehold/internal/httputil"
)

// WorldHandler handles world HTTP requests
type WorldHandler struct {
	worlds services.WorldService
	logger *slog.Logger
}

// NewWorldHandler creates a new world handler
func NewWorldHandler(worlds services.WorldService, logger *slog.Logger) *WorldHandler {
	return &WorldHandler{
		worlds: worlds,
		logger: logger,
	}
}

// CreateWorld creates a new world
// POST /api/worlds
func (h *WorldHandler) CreateWorld(w http.ResponseWriter, r *http.Request) {
	var req services.CreateWorldRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	world, err := h.worlds.CreateWorld(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, world)
}

// GetWorld retrieves a world by ID
// GET /api/worlds/{id}
func (h *WorldHandler) GetWorld(w http.ResponseWriter, r *http.Request) {
	world, err := h.worlds.GetWorld(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, world)
}

// ListWorlds lists the caller's worlds
// GET /api/worlds
func (h *WorldHandler) ListWorlds(w http.ResponseWriter, r *http.Request) {
	worlds, err := h.worlds.ListWorlds(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, worlds)
}

// UpdateWorld updates a world
// PATCH /api/worlds/{id}
func (h *WorldHandler) UpdateWorld(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateWorldRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	world, err := h.worlds.UpdateWorld(r.Context(), r.PathValue("id"), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, world)
}

// DeleteWorld removes a world
// DELETE /api/worlds/{id}
func (h *WorldHandler) DeleteWorld(w http.ResponseWriter, r *http.Request) {
	if err := h.worlds.DeleteWorld(r.Context(), r.PathValue("id"), httputil.GetUserID(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
