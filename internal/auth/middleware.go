package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"ms-seating/internal/utils"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// Middleware verifies the bearer token against the external identity
// provider and stuffs the caller's identity into the request context.
// Token validation happens exactly once, here at the boundary; the
// inventory core below trusts the identity it is handed.
func Middleware(issuer string) func(http.Handler) http.Handler {
	if issuer == "" {
		panic("OIDC issuer not configured")
	}

	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		panic(fmt.Sprintf("Failed to create OIDC provider: %v", err))
	}

	// SkipClientIDCheck: tokens are minted for several audiences by the
	// same realm.
	verifier := provider.Verifier(&oidc.Config{
		SkipClientIDCheck: true,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", err.Error()))
				return
			}

			idToken, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "invalid token"))
				return
			}

			var claims struct {
				Sub  string `json:"sub"`
				Role string `json:"role"`
			}
			if err := idToken.Claims(&claims); err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "failed to parse claims"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Sub, claims.Role)))
		})
	}
}

// RequireAdmin rejects callers whose role claim does not match
// adminRole. Must run after Middleware.
func RequireAdmin(adminRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.EqualFold(Role(r.Context()), adminRole) {
				utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a context carrying the verified caller identity.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// UserID extracts the verified caller ID from the context.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

// Role extracts the caller's role claim from the context.
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}
