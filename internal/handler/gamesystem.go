package handler

import (
	"log/slog"
	"net/http"

	"lorehold/internal/domain/services"
	"lorehold/internal/httputil"
)

// GameSystemHandler handles game system HTTP requests
type GameSystemHandler struct {
	systems services.GameSystemService
	logger  *slog.Logger
}

// NewGameSystemHandler creates a new game system handler
func NewGameSystemHandler(systems services.GameSystemService, logger *slog.Logger) *GameSystemHandler {
	return &GameSystemHandler{
		systems: systems,
		logger:  logger,
	}
}

// CreateGameSystem creates a new game system
// POST /api/systems
func (h *GameSystemHandler) CreateGameSystem(w http.ResponseWriter, r *http.Request) {
	var req services.CreateGameSystemRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	system, err := h.systems.CreateGameSystem(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, system)
}

// GetGameSystem retrieves a game system by ID
// GET /api/systems/{id}
func (h *GameSystemHandler) GetGameSystem(w http.ResponseWriter, r *http.Request) {
	system, err := h.systems.GetGameSystem(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, system)
}

// ListGameSystems lists the caller's game systems
// GET /api/systems
func (h *GameSystemHandler) ListGameSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := h.systems.ListGameSystems(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, systems)
}

// ListPublicGameSystems lists game systems visible to everyone
// GET /api/systems/public
func (h *GameSystemHandler) ListPublicGameSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := h.systems.ListPublicGameSystems(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, systems)
}

// UpdateGameSystem updates a game system
// PATCH /api/systems/{id}
func (h *GameSystemHandler) UpdateGameSystem(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateGameSystemRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	system, err := h.systems.UpdateGameSystem(r.Context(), r.PathValue("id"), httputil.GetUserID(r), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, system)
}

// DeleteGameSystem deletes a game system
// DELETE /api/systems/{id}
func (h *GameSystemHandler) DeleteGameSystem(w http.ResponseWriter, r *http.Request) {
	if err := h.systems.DeleteGameSystem(r.Context(), r.PathValue("id"), httputil.GetUserID(r)); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
