package portal

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/domain/patient"
	"github.com/medrec/medrec/internal/domain/staff"
	"github.com/medrec/medrec/internal/platform/auth"
)

// LoginRequest is the schema shared by patient and staff sign-in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  identityView `json:"user"`
}

type identityView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Handler serves authentication and the patient self-service views. It is
// the only surface a patient session can reach.
type Handler struct {
	patients *patient.Service
	staff    *staff.Service
	sessions *auth.Sessions
}

func NewHandler(patients *patient.Service, staffSvc *staff.Service, sessions *auth.Sessions) *Handler {
	return &Handler{patients: patients, staff: staffSvc, sessions: sessions}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/login", h.PatientLogin)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me, auth.RequireAuth())
	api.POST("/admin/login", h.StaffLogin)

	p := api.Group("/portal", auth.RequireAuth())
	p.GET("/profile", h.Profile)
	p.PUT("/profile", h.UpdateProfile)
	p.GET("/records", h.Records)
	p.GET("/appointments", h.Appointments)
	p.GET("/prescriptions", h.Prescriptions)
}

func (h *Handler) issueSession(c echo.Context, id auth.Identity) (*loginResponse, error) {
	token, err := h.sessions.Issue(id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessions.TTL()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return &loginResponse{
		Token: token,
		User:  identityView{ID: id.SubjectID.String(), Name: id.Name, Role: id.Role},
	}, nil
}

func (h *Handler) PatientLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	p, err := h.patients.VerifyCredentials(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, patient.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, patient.ErrInvalidCredentials.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	resp, err := h.issueSession(c, auth.Identity{
		SubjectID: p.ID,
		Name:      p.FirstName + " " + p.LastName,
		Role:      auth.RolePatient,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) StaffLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	a, err := h.staff.VerifyCredentials(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, staff.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, staff.ErrInvalidCredentials.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	resp, err := h.issueSession(c, auth.Identity{
		SubjectID: a.ID,
		Name:      a.Name,
		Role:      auth.RoleAdmin,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout clears the session cookie. Tokens are stateless so the server keeps
// nothing to revoke; a held token stays valid until it expires.
func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	id, _ := auth.IdentityFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, identityView{
		ID:   id.SubjectID.String(),
		Name: id.Name,
		Role: id.Role,
	})
}

// patientID resolves the calling patient. Staff sessions are rejected here;
// the console reads records through the management routes instead.
func (h *Handler) patientID(c echo.Context) (auth.Identity, error) {
	id, _ := auth.IdentityFromContext(c.Request().Context())
	if id.Role != auth.RolePatient {
		return auth.Identity{}, echo.NewHTTPError(http.StatusForbidden, "patient session required")
	}
	return id, nil
}

func recordsError(err error) error {
	if errors.Is(err, patient.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, patient.ErrNotFound.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func (h *Handler) Profile(c echo.Context) error {
	id, err := h.patientID(c)
	if err != nil {
		return err
	}
	p, err := h.patients.GetByID(c.Request().Context(), id.SubjectID)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateProfileRequest limits self-service edits to contact details and the
// password. Identity fields stay under console control.
type UpdateProfileRequest struct {
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Password *string `json:"password"`
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := h.patientID(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	p, err := h.patients.Update(c.Request().Context(), id.SubjectID, patient.UpdateRequest{
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, patient.ErrInvalid) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Records(c echo.Context) error {
	id, err := h.patientID(c)
	if err != nil {
		return err
	}
	recs, err := h.patients.GetWithRecords(c.Request().Context(), id.SubjectID)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) Appointments(c echo.Context) error {
	id, err := h.patientID(c)
	if err != nil {
		return err
	}
	recs, err := h.patients.GetWithRecords(c.Request().Context(), id.SubjectID)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, recs.Appointments)
}

func (h *Handler) Prescriptions(c echo.Context) error {
	id, err := h.patientID(c)
	if err != nil {
		return err
	}
	recs, err := h.patients.GetWithRecords(c.Request().Context(), id.SubjectID)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, recs.Prescriptions)
}
