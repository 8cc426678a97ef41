package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/parley-chat/parley/shared/errors"
	"github.com/parley-chat/parley/shared/logger"
	"github.com/parley-chat/parley/shared/middleware/ratelimiter"
	"github.com/parley-chat/parley/shared/utils"
)

// IdentityFunc names the bucket a request draws from.
type IdentityFunc func(r *http.Request) (string, error)

// RateLimit answers 429 with a Retry-After hint once the caller's bucket is
// empty. An identity error is written as is.
func RateLimit(rl *ratelimiter.UserRateLimiter, identity IdentityFunc) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(rl.RetryAfterSeconds())
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := identity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(id) {
				logger.Log.Debug("rate limited", "identity", id, "path", r.URL.Path)
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ByUser keys buckets on the authenticated user, so it must run after NeedAuth.
func ByUser(r *http.Request) (string, error) {
	user := GetUserFromContext(r)
	if user == nil {
		return "", &errors.ErrorWithStatusCode{Message: "Unauthorized", StatusCode: http.StatusUnauthorized}
	}
	return fmt.Sprintf("user_%d", user.Id), nil
}
