package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"clubrun/internal/errors"
	"clubrun/internal/policy"
)

const identityContextKey = "identity"

// LoadIdentity converts the claims placed in context by the echo-jwt
// middleware into a policy.Identity. Tokens without club scope are rejected.
func LoadIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid token", Code: "INVALID_TOKEN",
			})
		}
		claims, ok := token.Claims.(*Claims)
		if !ok || claims.ClubID == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "token missing club id", Code: "INVALID_TOKEN",
			})
		}
		c.Set(identityContextKey, &policy.Identity{
			UserID: claims.UserID,
			ClubID: claims.ClubID,
			Role:   claims.Role,
		})
		return next(c)
	}
}

// Optional resolves a bearer token when one is present but lets anonymous
// and unverifiable callers through. Marathon listing and detail use this:
// the policy layer decides what an anonymous caller may see.
func Optional(jwtService *JWTService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == "" || raw == header {
				return next(c)
			}
			claims, err := jwtService.ValidateToken(raw)
			if err != nil {
				return next(c)
			}
			c.Set(identityContextKey, &policy.Identity{
				UserID: claims.UserID,
				ClubID: claims.ClubID,
				Role:   claims.Role,
			})
			return next(c)
		}
	}
}

// RequireAdmin rejects callers that are not club admins. Must run after
// LoadIdentity.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IdentityFrom(c).IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "admin access required", Code: "FORBIDDEN",
			})
		}
		return next(c)
	}
}

// IdentityFrom returns the caller's identity, or nil for anonymous requests.
func IdentityFrom(c echo.Context) *policy.Identity {
	id, _ := c.Get(identityContextKey).(*policy.Identity)
	return id
}
