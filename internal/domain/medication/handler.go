package medication

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/auth"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes mounts the catalog proxy. The list is advisory reference
// data, so any authenticated session may read it.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/medications", h.List, auth.RequireAuth())
}

func (h *Handler) List(c echo.Context) error {
	meds, err := h.catalog.List(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return echo.NewHTTPError(http.StatusBadGateway, ErrUnavailable.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, meds)
}
