package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

// stubAuthService records the last input it received and returns canned results.
type stubAuthService struct {
	lastRegisterInput ports.RegisterInput
	lastLoginEmail    string
	lastRefreshUserID string
	lastRefreshToken  string

	registerResult *ports.AuthResult
	loginResult    *ports.AuthResult
	refreshResult  *ports.TokenPair
	distributors   []domain.User
	err            error
}

func (s *stubAuthService) Register(_ context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	s.lastRegisterInput = input
	return s.registerResult, s.err
}

func (s *stubAuthService) Login(_ context.Context, email, _ string) (*ports.AuthResult, error) {
	s.lastLoginEmail = email
	return s.loginResult, s.err
}

func (s *stubAuthService) RefreshTokens(_ context.Context, userID, presented string) (*ports.TokenPair, error) {
	s.lastRefreshUserID = userID
	s.lastRefreshToken = presented
	return s.refreshResult, s.err
}

func (s *stubAuthService) RegisterAdmin(_ context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	input.Role = domain.RoleAdmin
	s.lastRegisterInput = input
	return s.registerResult, s.err
}

func (s *stubAuthService) CreateDistributor(_ context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	input.Role = domain.RoleDistributor
	s.lastRegisterInput = input
	return s.registerResult, s.err
}

func (s *stubAuthService) Distributors(_ context.Context) ([]domain.User, error) {
	return s.distributors, s.err
}

func sampleAuthResult(role string) *ports.AuthResult {
	return &ports.AuthResult{
		Tokens: ports.TokenPair{
			AccessToken:      "access",
			RefreshToken:     "refresh",
			AccessExpiresIn:  900,
			RefreshExpiresIn: 604800,
		},
		User: domain.User{ID: "u1", Email: "a@x.com", Role: role},
	}
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const validRegisterBody = `{
	"full_name": "Alice Example",
	"email": "a@x.com",
	"phone_number": "0700000000",
	"address": "12 Bakery Street, Springfield",
	"age": 30,
	"password": "secret1"
}`

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{registerResult: sampleAuthResult(domain.RoleDistributor)}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/auth/register", validRegisterBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var res authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if res.AccessToken != "access" || res.RefreshToken != "refresh" {
		t.Fatalf("unexpected token payload: %+v", res.tokenResponse)
	}
	if res.User.ID != "u1" {
		t.Fatalf("expected user in response, got %+v", res.User)
	}
}

func TestAuthHandler_Register_StripsRequestedRole(t *testing.T) {
	svc := &stubAuthService{registerResult: sampleAuthResult(domain.RoleDistributor)}
	h := NewAuthHandler(svc)

	body := strings.Replace(validRegisterBody, `"password": "secret1"`, `"password": "secret1", "role": "admin"`, 1)
	c, _ := newJSONContext(http.MethodPost, "/auth/register", body)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if svc.lastRegisterInput.Role != "" {
		t.Fatalf("self-registration must not forward a role, got %q", svc.lastRegisterInput.Role)
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(http.MethodPost, "/auth/register", `{"email":"not-an-email"}`)
	err := h.Register(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_ConflictPassthrough(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: domain.ErrEmailExists})

	c, _ := newJSONContext(http.MethodPost, "/auth/register", validRegisterBody)
	if err := h.Register(c); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists passthrough, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubAuthService{loginResult: sampleAuthResult(domain.RoleDistributor)}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"secret1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastLoginEmail != "a@x.com" {
		t.Fatalf("unexpected email forwarded: %s", svc.lastLoginEmail)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: domain.ErrInvalidCredentials})

	c, _ := newJSONContext(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials passthrough, got %v", err)
	}
}

func TestAuthHandler_Login_MissingPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(http.MethodPost, "/auth/login", `{"email":"a@x.com"}`)
	err := h.Login(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	svc := &stubAuthService{refreshResult: &ports.TokenPair{AccessToken: "a2", RefreshToken: "r2"}}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/auth/refresh", "")
	c.Set("sub", "u1")
	c.Set("refresh_token", "presented-token")

	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastRefreshUserID != "u1" || svc.lastRefreshToken != "presented-token" {
		t.Fatalf("claims not forwarded: %s %s", svc.lastRefreshUserID, svc.lastRefreshToken)
	}

	var res tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if res.AccessToken != "a2" || res.RefreshToken != "r2" {
		t.Fatalf("unexpected rotated pair: %+v", res)
	}
}

func TestAuthHandler_Refresh_MissingClaims(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(http.MethodPost, "/auth/refresh", "")
	err := h.Refresh(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Refresh_RejectedToken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: domain.ErrInvalidRefreshToken})

	c, _ := newJSONContext(http.MethodPost, "/auth/refresh", "")
	c.Set("sub", "u1")
	c.Set("refresh_token", "stale")
	if err := h.Refresh(c); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken passthrough, got %v", err)
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newJSONContext(http.MethodGet, "/auth/profile", "")
	c.Set("sub", "u1")
	c.Set("email", "a@x.com")
	c.Set("role", domain.RoleAdmin)

	if err := h.Profile(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var res profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if res.UserID != "u1" || res.Email != "a@x.com" || res.Role != domain.RoleAdmin {
		t.Fatalf("unexpected profile: %+v", res)
	}
}

func TestAuthHandler_Profile_MissingClaims(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(http.MethodGet, "/auth/profile", "")
	err := h.Profile(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthHandler_RegisterAdmin_ForcesRole(t *testing.T) {
	svc := &stubAuthService{registerResult: sampleAuthResult(domain.RoleAdmin)}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/auth/admin/register", validRegisterBody)
	if err := h.RegisterAdmin(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.lastRegisterInput.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role forced, got %q", svc.lastRegisterInput.Role)
	}
}

func TestAuthHandler_CreateDistributor_ForcesRole(t *testing.T) {
	svc := &stubAuthService{registerResult: sampleAuthResult(domain.RoleDistributor)}
	h := NewAuthHandler(svc)

	c, _ := newJSONContext(http.MethodPost, "/auth/admin/create-distributor", validRegisterBody)
	if err := h.CreateDistributor(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if svc.lastRegisterInput.Role != domain.RoleDistributor {
		t.Fatalf("expected distributor role forced, got %q", svc.lastRegisterInput.Role)
	}
}

func TestAuthHandler_ListDistributors(t *testing.T) {
	svc := &stubAuthService{distributors: []domain.User{{ID: "u2", Role: domain.RoleDistributor}}}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(http.MethodGet, "/auth/admin/distributors", "")
	if err := h.ListDistributors(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var res usersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(res.Users) != 1 || res.Users[0].ID != "u2" {
		t.Fatalf("unexpected listing: %+v", res.Users)
	}
}
