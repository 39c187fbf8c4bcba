package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runRBAC(role string, allowedRoles ...string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("role", role)
	}

	handler := RBAC(allowedRoles...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

func TestRBAC_AllowedRole(t *testing.T) {
	rec, err := runRBAC("admin", "admin")
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_ForbiddenRole(t *testing.T) {
	rec, err := runRBAC("distributor", "admin")
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRBAC_MissingRole(t *testing.T) {
	rec, err := runRBAC("", "admin")
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRBAC_MultipleRoles(t *testing.T) {
	rec, err := runRBAC("distributor", "admin", "distributor")
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
