package handlers

import (
	"github.com/labstack/echo/v4"

	periodeRepo "github.com/Ramsey-B/aster/internal/repositories/periode"
	skemaRepo "github.com/Ramsey-B/aster/internal/repositories/skema"
)

// ReferensiHandler serves the reference data: submission periods and
// funding schemes.
type ReferensiHandler struct {
	periods periodeRepo.PeriodeRepository
	schemes skemaRepo.SkemaRepository
}

// NewReferensiHandler creates a new reference data handler
func NewReferensiHandler(periods periodeRepo.PeriodeRepository, schemes skemaRepo.SkemaRepository) *ReferensiHandler {
	return &ReferensiHandler{periods: periods, schemes: schemes}
}

// RegisterRoutes registers the reference data routes
func (h *ReferensiHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/periode", h.ListPeriods)
	g.GET("/periode/:id", h.GetPeriod)
	g.GET("/skema", h.ListSchemes)
	g.GET("/skema/:id", h.GetScheme)
}

// ListPeriods handles GET /periode
func (h *ReferensiHandler) ListPeriods(c echo.Context) error {
	periods, err := h.periods.List(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, periods)
}

// GetPeriod handles GET /periode/:id
func (h *ReferensiHandler) GetPeriod(c echo.Context) error {
	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	periode, err := h.periods.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, periode)
}

// ListSchemes handles GET /skema
func (h *ReferensiHandler) ListSchemes(c echo.Context) error {
	schemes, err := h.schemes.List(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, schemes)
}

// GetScheme handles GET /skema/:id
func (h *ReferensiHandler) GetScheme(c echo.Context) error {
	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	skema, err := h.schemes.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, skema)
}
