// Package auth resolves the crew identity attached to a request.
//
// Field clients attach the session token issued at login as a Bearer
// header. The token identifies the crew for auditing and rate limiting;
// routes stay reachable without one so an ambulance with a stale token can
// still get a dispatch.
package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// CrewNameKey is the echo context key under which the verified crew name
// is stored.
const CrewNameKey = "crew_name"

// CrewIdentity returns middleware that verifies a Bearer session token and
// stores the crew name in the request context. An absent or invalid token
// leaves the request anonymous rather than rejecting it.
func CrewIdentity(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return next(c)
			}
			name, err := verify(token, secret)
			if err == nil && name != "" {
				c.Set(CrewNameKey, name)
			}
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func verify(token string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}
