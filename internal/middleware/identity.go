package middleware

import (
	"net/http"
	"strings"

	"lorehold/internal/httputil"
)

// Identity extracts the principal resolved by the upstream auth layer and
// places it on the request context. Authentication itself happens outside
// this service; by the time a request arrives here the gateway has already
// verified the caller and stamped the header.
func Identity(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only API routes require an identity; health probes stay anonymous.
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			userID := r.Header.Get(header)
			if userID == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing identity")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}
