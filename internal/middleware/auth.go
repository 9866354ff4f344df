package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/foldervault/foldervault/internal/ctxkeys"
	"github.com/foldervault/foldervault/internal/service"
)

// AuthMiddleware verifies the Authorization bearer token and adds the
// caller identity to the request context. Requests without a valid
// token pass through unauthenticated; RequireAuth rejects them.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := authService.VerifyToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				// Invalid token, continue unauthenticated
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests before they reach the
// service layer.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := ctxkeys.Identity(r.Context())
		if identity == nil {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// RequireRole rejects authenticated callers lacking the given role.
func RequireRole(role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity := ctxkeys.Identity(r.Context())
			if identity == nil {
				unauthorized(w)
				return
			}
			if identity.Role != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "insufficient role"})
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
