package middleware

import (
	"context"
	"errors"
	"net/http"
)

// ErrSessionNotFound is returned by SessionStore implementations when the
// presented token matches no live session.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore resolves a raw session token to its principal.
type SessionStore interface {
	PrincipalByToken(ctx context.Context, token string) (Actor, error)
}

type AuthMiddleware struct {
	Sessions   SessionStore
	CookieName string
}

func (m AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.CookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}

		actor, err := m.Sessions.PrincipalByToken(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "Session is invalid", nil)
				return
			}
			writeError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load session", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}
