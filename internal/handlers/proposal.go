package handlers

import (
	"github.com/labstack/echo/v4"

	proposalrepo "github.com/Ramsey-B/aster/internal/repositories/proposal"
	proposalsvc "github.com/Ramsey-B/aster/internal/services/proposal"
	"github.com/Ramsey-B/aster/pkg/middleware"
	"github.com/Ramsey-B/aster/pkg/models"
)

// ProposalHandler handles proposal lifecycle requests
type ProposalHandler struct {
	service *proposalsvc.Service
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(service *proposalsvc.Service) *ProposalHandler {
	return &ProposalHandler{service: service}
}

// ProposalRequest is the request body for creating or updating a proposal
type ProposalRequest struct {
	PeriodeID    string              `json:"periode_id"`
	SkemaID      string              `json:"skema_id"`
	Judul        string              `json:"judul" validate:"required"`
	Abstrak      string              `json:"abstrak" validate:"required"`
	FileProposal *string             `json:"file_proposal,omitempty"`
	Anggota      []models.TeamMember `json:"anggota,omitempty"`
}

// ReviewerAssignmentRequest is the request body for assigning reviewers
type ReviewerAssignmentRequest struct {
	ReviewerIDs []string `json:"reviewer_ids" validate:"required,min=1"`
}

// ReviewRequest is the request body for submitting a review
type ReviewRequest struct {
	Nilai    float64 `json:"nilai" validate:"min=0,max=100"`
	Komentar string  `json:"komentar"`
}

// DecisionRequest is the request body for a rejection or revision decision
type DecisionRequest struct {
	Komentar string `json:"komentar"`
}

// ClearanceRequest is the request body for recording administrative clearance
type ClearanceRequest struct {
	Hasil   models.ClearanceStatus `json:"hasil" validate:"required,oneof=LOLOS TIDAK_LOLOS"`
	Catatan *string                `json:"catatan,omitempty"`
}

// RegisterRoutes registers the proposal routes
func (h *ProposalHandler) RegisterRoutes(g *echo.Group) {
	admin := middleware.RequireRole(proposalsvc.RoleAdmin)

	proposals := g.Group("/proposal")
	proposals.POST("", h.Create)
	proposals.GET("", h.List)
	proposals.GET("/:id", h.Get)
	proposals.PUT("/:id", h.Update)
	proposals.DELETE("/:id", h.Delete)
	proposals.POST("/:id/submit", h.Submit)
	proposals.POST("/:id/review", h.CompleteReview, middleware.RequireRole(proposalsvc.RoleAdmin, "REVIEWER"))
	proposals.POST("/:id/assign-reviewers", h.AssignReviewers, admin)
	proposals.GET("/:id/reviewers", h.ListReviewers, admin)
	proposals.POST("/:id/approve", h.Approve, admin)
	proposals.POST("/:id/reject", h.Reject, admin)
	proposals.POST("/:id/revise", h.RequestRevision, admin)
	proposals.PATCH("/:id/penilaian-administratif", h.SetClearance, admin)
	proposals.POST("/:id/complete", h.Complete, admin)
}

// Create handles POST /proposal
func (h *ProposalHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req ProposalRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	periodeID, err := parseBodyUUID(req.PeriodeID, "periode_id")
	if err != nil {
		return err
	}
	skemaID, err := parseBodyUUID(req.SkemaID, "skema_id")
	if err != nil {
		return err
	}

	proposal, err := h.service.Create(ctx, proposalsvc.CreateInput{
		PeriodeID:    periodeID,
		SkemaID:      skemaID,
		Judul:        req.Judul,
		Abstrak:      req.Abstrak,
		FileProposal: req.FileProposal,
		Anggota:      req.Anggota,
	})
	if err != nil {
		return err
	}

	return CreatedResponse(c, proposal)
}

// List handles GET /proposal
func (h *ProposalHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter := proposalrepo.ListFilter{
		Limit:  QueryInt(c, "limit", 50),
		Offset: QueryInt(c, "offset", 0),
	}
	if raw := c.QueryParam("periode_id"); raw != "" {
		periodeID, err := parseBodyUUID(raw, "periode_id")
		if err != nil {
			return err
		}
		filter.PeriodeID = &periodeID
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := models.ProposalStatus(raw)
		filter.Status = &status
	}

	proposals, err := h.service.List(ctx, filter)
	if err != nil {
		return err
	}

	return SuccessResponse(c, proposals)
}

// Get handles GET /proposal/:id
func (h *ProposalHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	proposal, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, proposal)
}

// Update handles PUT /proposal/:id
func (h *ProposalHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req ProposalRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	proposal, err := h.service.Update(ctx, id, proposalsvc.UpdateInput{
		Judul:        req.Judul,
		Abstrak:      req.Abstrak,
		FileProposal: req.FileProposal,
		Anggota:      req.Anggota,
	})
	if err != nil {
		return err
	}

	return SuccessResponse(c, proposal)
}

// Delete handles DELETE /proposal/:id
func (h *ProposalHandler) Delete(c echo.Context) error {
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

// Submit handles POST /proposal/:id/submit
func (h *ProposalHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	proposal, err := h.service.Submit(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, proposal)
}

// AssignReviewers handles POST /proposal/:id/assign-reviewers
func (h *ProposalHandler) AssignReviewers(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req ReviewerAssignmentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	reviewerIDs, err := parseUUIDs(req.ReviewerIDs, "reviewer_ids")
	if err != nil {
		return err
	}

	if err := h.service.AssignReviewers(ctx, id, reviewerIDs); err != nil {
		return err
	}

	proposal, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, proposal)
}

// ListReviewers handles GET /proposal/:id/reviewers
func (h *ProposalHandler) ListReviewers(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	reviewers, err := h.service.ListReviewers(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, reviewers)
}

// CompleteReview handles POST /proposal/:id/review
func (h *ProposalHandler) CompleteReview(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req ReviewRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	if err := h.service.CompleteReview(ctx, id, req.Nilai, req.Komentar); err != nil {
		return err
	}

	return NoContentResponse(c)
}

// Approve handles POST /proposal/:id/approve
func (h *ProposalHandler) Approve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	proposal, err := h.service.Approve(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, proposal)
}

// Reject handles POST /proposal/:id/reject
func (h *ProposalHandler) Reject(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req DecisionRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	proposal, err := h.service.Reject(ctx, id, req.Komentar)
	if err != nil {
		return err
	}

	return SuccessResponse(c, proposal)
}

// RequestRevision handles POST /proposal/:id/revise
func (h *ProposalHandler) RequestRevision(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req DecisionRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	if req.Komentar == "" {
		return BadRequest("komentar is required for a revision request")
	}

	proposal, err := h.service.RequestRevision(ctx, id, req.Komentar)
	if err != nil {
		return err
	}

	return SuccessResponse(c, proposal)
}

// SetClearance handles PATCH /proposal/:id/penilaian-administratif
func (h *ProposalHandler) SetClearance(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	var req ClearanceRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	proposal, err := h.service.SetClearance(ctx, id, req.Hasil, req.Catatan)
	if err != nil {
		return err
	}

	return SuccessResponse(c, proposal)
}

// Complete handles POST /proposal/:id/complete
func (h *ProposalHandler) Complete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseUUID(c, "id")
	if err != nil {
		return err
	}

	proposal, err := h.service.Complete(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, proposal)
}
