// Package jwt verifies the bearer tokens issued by the identity service.
// NewToken exists for the dev token tool and tests; production tokens are
// minted elsewhere with the same key.
package jwt

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parley-chat/parley/shared/domain"
	internal_errors "github.com/parley-chat/parley/shared/errors"
	"github.com/parley-chat/parley/shared/logger"
)

// Claims carried by a parley token. uid is required; handle is informational.
type Claims struct {
	Uid    domain.UserId `json:"uid"`
	Handle domain.Handle `json:"handle,omitempty"`
	jwt.RegisteredClaims
}

type JwtService interface {
	NewToken(user domain.User) (string, error)
	Verify(token string) (*domain.User, error)
}

type Jwt struct {
	secretKey []byte
	ttl       time.Duration
	parser    *jwt.Parser
}

func New(secretKey string, ttl time.Duration) JwtService {
	return &Jwt{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

func unauthorized(msg string) error {
	return &internal_errors.ErrorWithStatusCode{Message: msg, StatusCode: http.StatusUnauthorized}
}

func (j *Jwt) NewToken(user domain.User) (string, error) {
	claims := Claims{
		Uid:    user.Id,
		Handle: user.Handle,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		logger.Log.Error("can't sign token", "error", err)
		return "", err
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the user the
// token was issued for. Every failure is a 401.
func (j *Jwt) Verify(token string) (*domain.User, error) {
	var claims Claims
	_, err := j.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	})
	if err != nil {
		logger.Log.Debug("token rejected", "error", err)
		return nil, unauthorized("Invalid token")
	}
	if claims.Uid == 0 {
		return nil, unauthorized("Invalid token claims")
	}
	return &domain.User{Id: claims.Uid, Handle: claims.Handle}, nil
}
