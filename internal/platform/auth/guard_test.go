package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func callGuard(t *testing.T, guard echo.MiddlewareFunc, id *Identity) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id != nil {
		req = req.WithContext(ContextWithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := guard(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return h(c)
}

func TestRequireAuth(t *testing.T) {
	err := callGuard(t, RequireAuth(), nil)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %v", err)
	}

	id := Identity{SubjectID: uuid.New(), Role: RolePatient}
	if err := callGuard(t, RequireAuth(), &id); err != nil {
		t.Fatalf("expected authenticated request to pass, got %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := callGuard(t, RequireAdmin(), nil); err == nil {
		t.Fatal("expected 401 for anonymous")
	}

	patient := Identity{SubjectID: uuid.New(), Role: RolePatient}
	err := callGuard(t, RequireAdmin(), &patient)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for patient role, got %v", err)
	}

	admin := Identity{SubjectID: uuid.New(), Role: RoleAdmin}
	if err := callGuard(t, RequireAdmin(), &admin); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
}

func TestCanAccessPatient(t *testing.T) {
	patientA := uuid.New()
	patientB := uuid.New()

	tests := []struct {
		name   string
		id     *Identity
		target uuid.UUID
		want   bool
	}{
		{"anonymous denied", nil, patientA, false},
		{"patient self allowed", &Identity{SubjectID: patientA, Role: RolePatient}, patientA, true},
		{"patient other denied", &Identity{SubjectID: patientA, Role: RolePatient}, patientB, false},
		{"admin any allowed", &Identity{SubjectID: uuid.New(), Role: RoleAdmin}, patientB, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.id != nil {
				ctx = ContextWithIdentity(ctx, *tt.id)
			}
			if got := CanAccessPatient(ctx, tt.target); got != tt.want {
				t.Errorf("CanAccessPatient() = %v, want %v", got, tt.want)
			}
		})
	}
}
