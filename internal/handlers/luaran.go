package handlers

import (
	"github.com/labstack/echo/v4"

	luaransvc "github.com/Ramsey-B/aster/internal/services/luaran"
	"github.com/Ramsey-B/aster/pkg/middleware"
	"github.com/Ramsey-B/aster/pkg/models"
)

// LuaranHandler handles research output requests
type LuaranHandler struct {
	service *luaransvc.Service
}

// NewLuaranHandler creates a new luaran handler
func NewLuaranHandler(service *luaransvc.Service) *LuaranHandler {
	return &LuaranHandler{service: service}
}

// CreateLuaranRequest is the request body for claiming an output
type CreateLuaranRequest struct {
	ProposalID string             `json:"proposal_id" validate:"required"`
	Jenis      models.LuaranJenis `json:"jenis" validate:"required"`
	Judul      string             `json:"judul" validate:"required"`
	URL        *string            `json:"url,omitempty"`
	FileBukti  *string            `json:"file_bukti,omitempty"`
}

// VerifyLuaranRequest is the request body for a verification decision
type VerifyLuaranRequest struct {
	Approve bool    `json:"approve"`
	Catatan *string `json:"catatan,omitempty"`
}

// RegisterRoutes registers the luaran routes
func (h *LuaranHandler) RegisterRoutes(g *echo.Group) {
	admin := middleware.RequireRole(luaransvc.RoleAdmin)

	outputs := g.Group("/luaran")
	outputs.POST("", h.Create)
	outputs.GET("/:proposalId", h.List)
	outputs.DELETE("/:id", h.Delete)
	outputs.POST("/:id/verify", h.Verify, admin)
}

// Create handles POST /luaran
func (h *LuaranHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateLuaranRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	proposalID, err := parseBodyUUID(req.ProposalID, "proposal_id")
	if err != nil {
		return err
	}
	output, err := h.service.Create(ctx, luaransvc.CreateInput{
		ProposalID: proposalID,
		Jenis:      req.Jenis,
		Judul:      req.Judul,
		URL:        req.URL,
		FileBukti:  req.FileBukti,
	})
	if err != nil {
		return err
	}

	return CreatedResponse(c, output)
}

// List handles GET /luaran/:proposalId
func (h *LuaranHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	proposalID, err := ParseUUID(c, "proposalId")
	if err != nil {
		return err
	}

	outputs, err := h.service.List(ctx, proposalID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, outputs)
}

// Delete handles DELETE /luaran/:id
func (h *LuaranHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(ctx, id); err != nil {
		return err
	}

	return NoContentResponse(c)
}

// Verify handles POST /luaran/:id/verify
func (h *LuaranHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req VerifyLuaranRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	output, err := h.service.Verify(ctx, id, req.Approve, req.Catatan)
	if err != nil {
		return err
	}

	return SuccessResponse(c, output)
}
