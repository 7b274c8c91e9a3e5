package middleware

import "net/http"

// RequireRole gates a route to actors holding the given role. The app has
// a flat role model (admin vs user), so role membership lives on the
// session principal and needs no extra lookup.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}
			if actor.Role != role {
				writeError(w, r, http.StatusForbidden, "forbidden", "Permission denied", map[string]string{"role": role})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
