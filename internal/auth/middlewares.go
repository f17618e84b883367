package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKeyUser struct{}

const bearerPrefix = "Bearer "

func trimBearer(token string) string {
	return strings.TrimPrefix(token, bearerPrefix)
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, user)
}

// UserFromContext gets the user stored in the context by JwtValidator.
func UserFromContext(ctx context.Context) (User, bool) {
	user, found := ctx.Value(ctxKeyUser{}).(User)
	return user, found
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="clinic_scheduler"`)
	w.WriteHeader(http.StatusUnauthorized)
}

// JwtValidator requires a valid bearer access token and stores its user in the request context.
// Requests without one are answered with a 401.
func JwtValidator(service Authorizer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !found || token == "" {
				challenge(w)
				return
			}
			user, err := service.ValidateToken(r.Context(), token)
			if err != nil {
				challenge(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), *user)))
		})
	}
}

// AllowedRole lets the request through only when the authenticated user has one of the roles:
// 401 without a user, 403 with the wrong role.
func AllowedRole(service Authorizer, roles ...Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := service.GetAuthenticatedUser(r.Context())
			if err != nil {
				challenge(w)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.WriteHeader(http.StatusForbidden)
		})
	}
}
