package handlers

import (
	"github.com/labstack/echo/v4"

	kontraksvc "github.com/Ramsey-B/aster/internal/services/kontrak"
	"github.com/Ramsey-B/aster/pkg/middleware"
)

// KontrakHandler handles grant contract requests
type KontrakHandler struct {
	service *kontraksvc.Service
}

// NewKontrakHandler creates a new kontrak handler
func NewKontrakHandler(service *kontraksvc.Service) *KontrakHandler {
	return &KontrakHandler{service: service}
}

// CreateKontrakRequest is the request body for issuing a contract
type CreateKontrakRequest struct {
	ProposalID   string `json:"proposal_id" validate:"required"`
	NomorKontrak string `json:"nomor_kontrak" validate:"required"`
}

// UploadSignedRequest is the request body for recording the signed documents
type UploadSignedRequest struct {
	FileKontrak string `json:"file_kontrak" validate:"required"`
	FileSK      string `json:"file_sk" validate:"required"`
}

// RegisterRoutes registers the kontrak routes
func (h *KontrakHandler) RegisterRoutes(g *echo.Group) {
	admin := middleware.RequireRole("ADMIN_LPPM")

	contracts := g.Group("/kontrak")
	contracts.POST("", h.Create, admin)
	contracts.GET("/:id", h.Get)
	contracts.PATCH("/:id/upload-ttd", h.UploadSigned, admin)

	g.GET("/proposal/:id/kontrak", h.GetByProposal)
}

// Create handles POST /kontrak
func (h *KontrakHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateKontrakRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	proposalID, err := parseBodyUUID(req.ProposalID, "proposal_id")
	if err != nil {
		return err
	}
	kontrak, err := h.service.Create(ctx, proposalID, req.NomorKontrak)
	if err != nil {
		return err
	}

	return CreatedResponse(c, kontrak)
}

// Get handles GET /kontrak/:id
func (h *KontrakHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	kontrak, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, kontrak)
}

// GetByProposal handles GET /proposal/:id/kontrak
func (h *KontrakHandler) GetByProposal(c echo.Context) error {
	ctx := c.Request().Context()

	proposalID, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	kontrak, err := h.service.GetByProposal(ctx, proposalID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, kontrak)
}

// UploadSigned handles PATCH /kontrak/:id/upload-ttd
func (h *KontrakHandler) UploadSigned(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req UploadSignedRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	kontrak, err := h.service.UploadSigned(ctx, id, req.FileKontrak, req.FileSK)
	if err != nil {
		return err
	}

	return SuccessResponse(c, kontrak)
}
