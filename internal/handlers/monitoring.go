package handlers

import (
	"github.com/labstack/echo/v4"

	monitoringsvc "github.com/Ramsey-B/aster/internal/services/monitoring"
	"github.com/Ramsey-B/aster/pkg/middleware"
	"github.com/Ramsey-B/aster/pkg/models"
)

// MonitoringHandler handles progress and final report requests
type MonitoringHandler struct {
	service *monitoringsvc.Service
}

// NewMonitoringHandler creates a new monitoring handler
func NewMonitoringHandler(service *monitoringsvc.Service) *MonitoringHandler {
	return &MonitoringHandler{service: service}
}

// SubmitReportRequest is the request body for uploading a report
type SubmitReportRequest struct {
	Jenis       models.MonitoringTrack `json:"jenis" validate:"required,oneof=KEMAJUAN AKHIR"`
	FileLaporan string                 `json:"file_laporan" validate:"required"`
}

// VerifyReportRequest is the request body for a verification decision
type VerifyReportRequest struct {
	Approve bool    `json:"approve"`
	Catatan *string `json:"catatan,omitempty"`
}

// RegisterRoutes registers the monitoring routes
func (h *MonitoringHandler) RegisterRoutes(g *echo.Group) {
	admin := middleware.RequireRole(monitoringsvc.RoleAdmin)

	monitoring := g.Group("/monitoring")
	monitoring.POST("/:proposalId/laporan", h.SubmitReport)
	monitoring.GET("/:proposalId", h.List)
	monitoring.POST("/laporan/:id/verify", h.Verify, admin)
}

// SubmitReport handles POST /monitoring/:proposalId/laporan
func (h *MonitoringHandler) SubmitReport(c echo.Context) error {
	ctx := c.Request().Context()

	proposalID, err := ParseUUID(c, "proposalId")
	if err != nil {
		return err
	}

	var req SubmitReportRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	report, err := h.service.SubmitReport(ctx, proposalID, req.Jenis, req.FileLaporan)
	if err != nil {
		return err
	}

	return CreatedResponse(c, report)
}

// List handles GET /monitoring/:proposalId
func (h *MonitoringHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	proposalID, err := ParseUUID(c, "proposalId")
	if err != nil {
		return err
	}

	reports, err := h.service.List(ctx, proposalID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, reports)
}

// Verify handles POST /monitoring/laporan/:id/verify
func (h *MonitoringHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req VerifyReportRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	report, err := h.service.Verify(ctx, id, req.Approve, req.Catatan)
	if err != nil {
		return err
	}

	return SuccessResponse(c, report)
}
