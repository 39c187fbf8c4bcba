package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: sub and role must be
// non-empty (presence proves the middleware ran and the token carried a
// usable identity).
func ctxClaims(c echo.Context) (sub, email, role string, err error) {
	sub, _ = c.Get("sub").(string)
	role, _ = c.Get("role").(string)
	if sub == "" || role == "" {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	email, _ = c.Get("email").(string)
	return sub, email, role, nil
}
