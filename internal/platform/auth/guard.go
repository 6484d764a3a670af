package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireAuth rejects anonymous requests.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFromContext(c.Request().Context()); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects anonymous requests and any session whose role is not
// admin. Patient sessions never reach the management surface.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !id.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}

// CanAccessPatient decides whether the caller in ctx may read or write the
// given patient's records: admins always, patients only their own. Handlers
// for appointments and prescriptions must resolve the OWNING patient id
// before calling this; a record id alone never authorizes anything.
func CanAccessPatient(ctx context.Context, patientID uuid.UUID) bool {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return false
	}
	if id.IsAdmin() {
		return true
	}
	return id.Role == RolePatient && id.SubjectID == patientID
}

// ErrForbidden is the uniform denial handlers return when CanAccessPatient
// says no, so a patient probing another patient's ids learns nothing from
// the response shape.
func ErrForbidden() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusForbidden, "access denied")
}
