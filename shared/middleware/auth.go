package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/parley-chat/parley/shared/domain"
	jwt_internal "github.com/parley-chat/parley/shared/jwt"
	"github.com/parley-chat/parley/shared/utils"
)

// Key to store the user in the request context
type key int

const UserClaimsKey key = 0

// Auth verifies bearer tokens. Identity comes only from the token; a user
// unknown to the directory passes auth and then fails every membership check.
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

func bearerToken(r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return strings.TrimSpace(token), found && strings.TrimSpace(token) != ""
}

// NeedAuth returns middleware that rejects requests without a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Please sign-in", http.StatusUnauthorized)
				return
			}
			user, err := a.jwtService.Verify(token)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext retrieves the user set by NeedAuth, or nil.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
