package handlers

import (
	"github.com/labstack/echo/v4"

	pencairansvc "github.com/Ramsey-B/aster/internal/services/pencairan"
	"github.com/Ramsey-B/aster/pkg/middleware"
	"github.com/Ramsey-B/aster/pkg/models"
)

// PencairanHandler handles disbursement ledger requests
type PencairanHandler struct {
	service *pencairansvc.Service
}

// NewPencairanHandler creates a new pencairan handler
func NewPencairanHandler(service *pencairansvc.Service) *PencairanHandler {
	return &PencairanHandler{service: service}
}

// RequestTrancheRequest is the request body for requesting a tranche
type RequestTrancheRequest struct {
	ProposalID string         `json:"proposal_id" validate:"required"`
	Termin     models.Tranche `json:"termin" validate:"required,oneof=TERMIN_1 TERMIN_2 TERMIN_3"`
}

// VerifyTrancheRequest is the request body for releasing or rejecting a tranche
type VerifyTrancheRequest struct {
	Release   bool    `json:"release"`
	Catatan   *string `json:"catatan,omitempty"`
	FileBukti *string `json:"file_bukti,omitempty"`
}

// RegisterRoutes registers the pencairan routes
func (h *PencairanHandler) RegisterRoutes(g *echo.Group) {
	admin := middleware.RequireRole("ADMIN_LPPM")

	disbursements := g.Group("/pencairan")
	disbursements.POST("", h.Request, admin)
	disbursements.GET("/:proposalId", h.List)
	disbursements.POST("/:id/verify", h.Verify, admin)
}

// Request handles POST /pencairan
func (h *PencairanHandler) Request(c echo.Context) error {
	ctx := c.Request().Context()

	var req RequestTrancheRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	proposalID, err := parseBodyUUID(req.ProposalID, "proposal_id")
	if err != nil {
		return err
	}

	entry, err := h.service.Request(ctx, proposalID, req.Termin)
	if err != nil {
		return err
	}

	return CreatedResponse(c, entry)
}

// List handles GET /pencairan/:proposalId
func (h *PencairanHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	proposalID, err := ParseUUID(c, "proposalId")
	if err != nil {
		return err
	}

	entries, err := h.service.List(ctx, proposalID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, entries)
}

// Verify handles POST /pencairan/:id/verify
func (h *PencairanHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req VerifyTrancheRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	entry, err := h.service.Verify(ctx, id, req.Release, req.Catatan, req.FileBukti)
	if err != nil {
		return err
	}

	return SuccessResponse(c, entry)
}
