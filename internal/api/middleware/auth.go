package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Auth validates the access token and injects its claims into context.
// Expired tokens fail parsing and are rejected here, at the boundary.
func Auth(accessSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := bearerClaims(c, accessSecret)
			if err != nil {
				return err
			}

			c.Set("sub", claims["sub"])
			c.Set("email", claims["email"])
			c.Set("role", claims["role"])

			return next(c)
		}
	}
}

// Refresh validates the refresh token with its own secret and exposes both
// the subject and the raw presented token, which the handler compares
// against the stored slot.
func Refresh(refreshSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := bearerClaims(c, refreshSecret)
			if err != nil {
				return err
			}

			c.Set("sub", claims["sub"])
			c.Set("refresh_token", rawBearer(c))

			return next(c)
		}
	}
}

func bearerClaims(c echo.Context, secret string) (jwt.MapClaims, error) {
	raw := rawBearer(c)
	if raw == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid authorization header")
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	return claims, nil
}

func rawBearer(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
