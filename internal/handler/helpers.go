package handler

import (
	"errors"
	"net/http"

	"lorehold/internal/domain"
	"lorehold/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnsupported):
		httputil.RespondError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrMalformed):
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleLockConflict adds the blocking lease's holder and expiry to the 409
// body so clients can show who is editing and until when.
func handleLockConflict(w http.ResponseWriter, err error) bool {
	var lockErr *domain.LockConflictError
	if !errors.As(err, &lockErr) {
		return false
	}
	httputil.RespondErrorWithExtras(w, http.StatusConflict, lockErr.Error(), map[string]interface{}{
		"locked_by":  lockErr.HolderID,
		"expires_at": lockErr.ExpiresAt,
	})
	return true
}

// respondServiceError routes lock conflicts through the enriched 409 body
// and everything else through the plain mapping.
func respondServiceError(w http.ResponseWriter, err error) {
	if handleLockConflict(w, err) {
		return
	}
	handleError(w, err)
}
