package handlers

import (
	"time"

	"github.com/labstack/echo/v4"

	seminarsvc "github.com/Ramsey-B/aster/internal/services/seminar"
	"github.com/Ramsey-B/aster/pkg/middleware"
	"github.com/Ramsey-B/aster/pkg/models"
)

// SeminarHandler handles seminar scheduling requests
type SeminarHandler struct {
	service *seminarsvc.Service
}

// NewSeminarHandler creates a new seminar handler
func NewSeminarHandler(service *seminarsvc.Service) *SeminarHandler {
	return &SeminarHandler{service: service}
}

// ScheduleSeminarRequest is the request body for booking a seminar
type ScheduleSeminarRequest struct {
	ProposalID     string              `json:"proposal_id" validate:"required"`
	Jenis          models.SeminarJenis `json:"jenis" validate:"required,oneof=PROPOSAL INTERNAL PUBLIK"`
	TanggalSeminar time.Time           `json:"tanggal_seminar" validate:"required"`
	Tempat         string              `json:"tempat" validate:"required"`
	Catatan        *string             `json:"catatan,omitempty"`
}

// UpdateSeminarRequest is the request body for updating a scheduled seminar
type UpdateSeminarRequest struct {
	TanggalSeminar *time.Time            `json:"tanggal_seminar,omitempty"`
	Tempat         *string               `json:"tempat,omitempty"`
	Catatan        *string               `json:"catatan,omitempty"`
	Status         *models.SeminarStatus `json:"status,omitempty"`
}

// RegisterRoutes registers the seminar routes
func (h *SeminarHandler) RegisterRoutes(g *echo.Group) {
	admin := middleware.RequireRole("ADMIN_LPPM")

	seminars := g.Group("/seminar")
	seminars.POST("", h.Schedule, admin)
	seminars.GET("/:proposalId", h.List)
	seminars.PUT("/:id", h.Update, admin)
}

// Schedule handles POST /seminar
func (h *SeminarHandler) Schedule(c echo.Context) error {
	ctx := c.Request().Context()

	var req ScheduleSeminarRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	proposalID, err := parseBodyUUID(req.ProposalID, "proposal_id")
	if err != nil {
		return err
	}

	seminar, err := h.service.Schedule(ctx, seminarsvc.ScheduleInput{
		ProposalID:     proposalID,
		Jenis:          req.Jenis,
		TanggalSeminar: req.TanggalSeminar,
		Tempat:         req.Tempat,
		Catatan:        req.Catatan,
	})
	if err != nil {
		return err
	}

	return CreatedResponse(c, seminar)
}

// List handles GET /seminar/:proposalId
func (h *SeminarHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	proposalID, err := ParseUUID(c, "proposalId")
	if err != nil {
		return err
	}

	seminars, err := h.service.List(ctx, proposalID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, seminars)
}

// Update handles PUT /seminar/:id
func (h *SeminarHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateSeminarRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	seminar, err := h.service.Update(ctx, id, seminarsvc.UpdateInput{
		TanggalSeminar: req.TanggalSeminar,
		Tempat:         req.Tempat,
		Catatan:        req.Catatan,
		Status:         req.Status,
	})
	if err != nil {
		return err
	}

	return SuccessResponse(c, seminar)
}
