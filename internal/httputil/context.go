package httputil

import (
	"context"
	"net/http"
)

// Unexported key type so other packages cannot collide with our context
// entries.
type contextKey string

const userIDKey contextKey = "userID"

// WithUserID returns the request with the acting user's id on its context.
// The identity middleware is the only writer.
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID reads the acting user's id off the request context. Empty means
// the request never passed the identity middleware.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
