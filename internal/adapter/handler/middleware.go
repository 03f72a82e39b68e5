package handler

import (
	"net/http"

	"github.com/handcrafted-haven/marketplace/internal/authctx"
	"github.com/handcrafted-haven/marketplace/internal/core/domain"
)

// RequireSession resolves the x-session-id header to an identity and stashes
// it in the request context; 401 when the header is missing or the session
// is unknown or expired.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(sessionHeader)
		if sid == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "session id is required"})
			return
		}

		session, err := h.auth.Authenticate(r.Context(), sid)
		if err != nil {
			h.writeError(w, err)
			return
		}

		ctx := authctx.WithSession(r.Context(), *session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route group behind a role whitelist. Must run after
// RequireSession.
func (h *Handler) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := authctx.SessionFromContext(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
				return
			}
			for _, role := range roles {
				if session.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		})
	}
}
