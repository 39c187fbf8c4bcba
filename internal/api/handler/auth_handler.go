package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/momocakes/commerce-api/internal/api/metrics"
	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

// AuthHandler handles HTTP requests for registration, login and token rotation.
type AuthHandler struct {
	service ports.AuthService
}

func NewAuthHandler(service ports.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register creates a new account and returns its first token pair.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Self registration never grants admin; the admin endpoints force the
	// role explicitly.
	req.Role = ""

	res, err := h.service.Register(c.Request().Context(), toRegisterInput(req))
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(res.User.Role).Inc()
	return c.JSON(http.StatusCreated, toAuthResponse(res))
}

// Login authenticates an account and returns a fresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// Refresh rotates the caller's session. The Refresh middleware has already
// verified the token signature and expiry; the service compares it against
// the stored slot.
//
// @Summary      Rotate the refresh token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	sub, _ := c.Get("sub").(string)
	presented, _ := c.Get("refresh_token").(string)
	if sub == "" || presented == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	tokens, err := h.service.RefreshTokens(c.Request().Context(), sub, presented)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRefreshToken) {
			metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		}
		return err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("rotated").Inc()
	return c.JSON(http.StatusOK, toTokenResponse(*tokens))
}

// Profile echoes the verified claims of the caller.
//
// @Summary      Current account claims
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	sub, email, role, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{UserID: sub, Email: email, Role: role})
}

// RegisterAdmin creates an account with the admin role. Admin-gated.
//
// @Summary      Register an admin account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "Admin details"
// @Success      201   {object}  authResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/admin/register [post]
func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	return h.registerWithRole(c, h.service.RegisterAdmin)
}

// CreateDistributor creates an account with the distributor role. Admin-gated.
//
// @Summary      Create a distributor account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "Distributor details"
// @Success      201   {object}  authResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/admin/create-distributor [post]
func (h *AuthHandler) CreateDistributor(c echo.Context) error {
	return h.registerWithRole(c, h.service.CreateDistributor)
}

// ListDistributors returns every distributor account. Admin-gated.
//
// @Summary      List distributor accounts
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usersResponse
// @Failure      403  {object}  errorResponse
// @Router       /auth/admin/distributors [get]
func (h *AuthHandler) ListDistributors(c echo.Context) error {
	users, err := h.service.Distributors(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users})
}

func (h *AuthHandler) registerWithRole(
	c echo.Context,
	register func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error),
) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := register(c.Request().Context(), toRegisterInput(req))
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(res.User.Role).Inc()
	return c.JSON(http.StatusCreated, toAuthResponse(res))
}
