package httpx

import (
	"net/http"
	"strings"

	"orange-brew/internal/apperr"
	"orange-brew/internal/auth"
)

// Authenticator verifies the Bearer token and puts the caller's Identity in
// the request context for the handlers downstream.
func Authenticator(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeError(w, apperr.Authentication("missing bearer token"))
				return
			}
			id, err := svc.Verify(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole gates a subtree to the given roles. Must sit after
// Authenticator.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				writeError(w, apperr.Authentication("missing bearer token"))
				return
			}
			if !allowed[id.Role] {
				writeError(w, apperr.Authorization("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func actor(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}
