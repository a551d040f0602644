// Package proposal implements the proposal lifecycle: drafting, submission,
// review, decisions and administrative clearance.
package proposal

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	proposalrepo "github.com/Ramsey-B/aster/internal/repositories/proposal"
	utils "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/metrics"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

// RoleAdmin may act on any proposal; other callers only on their own
const RoleAdmin = "ADMIN_LPPM"

// PeriodeReader resolves submission periods
type PeriodeReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Periode, error)
}

// SkemaReader resolves funding schemes
type SkemaReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skema, error)
}

// DosenReader resolves faculty members
type DosenReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dosen, error)
}

// FinalReportChecker answers whether a proposal's final report was approved
type FinalReportChecker interface {
	IsFinalVerified(ctx context.Context, proposalID uuid.UUID) (bool, error)
}

// Service implements the proposal lifecycle operations
type Service struct {
	db          database.DB
	logger      ectologger.Logger
	proposals   proposalrepo.ProposalRepository
	periods     PeriodeReader
	schemes     SkemaReader
	faculty     DosenReader
	finalReport FinalReportChecker
	emitter     *events.Emitter
}

// NewService creates a new proposal service
func NewService(
	db database.DB,
	logger ectologger.Logger,
	proposals proposalrepo.ProposalRepository,
	periods PeriodeReader,
	schemes SkemaReader,
	faculty DosenReader,
	finalReport FinalReportChecker,
	emitter *events.Emitter,
) *Service {
	return &Service{
		db:          db,
		logger:      logger,
		proposals:   proposals,
		periods:     periods,
		schemes:     schemes,
		faculty:     faculty,
		finalReport: finalReport,
		emitter:     emitter,
	}
}

// CreateInput carries the fields for a new draft proposal
type CreateInput struct {
	PeriodeID    uuid.UUID
	SkemaID      uuid.UUID
	Judul        string
	Abstrak      string
	FileProposal *string
	Anggota      []models.TeamMember
}

// Create registers a new draft proposal led by the caller
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.Create")
	defer span.End()

	ketuaID, err := s.callerDosen(ctx)
	if err != nil {
		return nil, err
	}

	periode, err := s.periods.GetByID(ctx, input.PeriodeID)
	if err != nil {
		return nil, err
	}
	if !periode.IsOpen(proposalrepo.Now()) {
		return nil, workflow.ErrPeriodNotOpen
	}

	if _, err := s.schemes.GetByID(ctx, input.SkemaID); err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		PeriodeID:    input.PeriodeID,
		SkemaID:      input.SkemaID,
		KetuaID:      ketuaID,
		Judul:        input.Judul,
		Abstrak:      input.Abstrak,
		FileProposal: input.FileProposal,
		Anggota:      database.JSONB[[]models.TeamMember]{Data: input.Anggota},
		Status:       models.StatusDraft,
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"periode_id": input.PeriodeID,
		"skema_id":   input.SkemaID,
		"ketua_id":   ketuaID,
	}).Info("creating proposal")

	return s.proposals.Create(ctx, proposal)
}

// Get retrieves a proposal
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.Get")
	defer span.End()

	return s.proposals.GetByID(ctx, id)
}

// List retrieves proposals matching the filter. Non-admin callers only see
// their own.
func (s *Service) List(ctx context.Context, filter proposalrepo.ListFilter) ([]*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.List")
	defer span.End()

	if utils.GetUserRole(ctx) != RoleAdmin {
		ketuaID, err := s.callerDosen(ctx)
		if err != nil {
			return nil, err
		}
		filter.KetuaID = &ketuaID
	}

	return s.proposals.List(ctx, filter)
}

// UpdateInput carries the editable fields of a proposal
type UpdateInput struct {
	Judul        string
	Abstrak      string
	FileProposal *string
	Anggota      []models.TeamMember
}

// Update edits a DRAFT or REVISI proposal owned by the caller
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.Update")
	defer span.End()

	proposal, err := s.ownedProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if !workflow.IsEditable(proposal.Status) {
		return nil, workflow.ErrProposalNotEditable
	}

	proposal.Judul = input.Judul
	proposal.Abstrak = input.Abstrak
	proposal.FileProposal = input.FileProposal
	proposal.Anggota = database.JSONB[[]models.TeamMember]{Data: input.Anggota}

	return s.proposals.Update(ctx, proposal)
}

// Delete removes a DRAFT proposal with no reviewer assignments
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.Delete")
	defer span.End()

	proposal, err := s.ownedProposal(ctx, id)
	if err != nil {
		return err
	}

	if !workflow.IsDeletable(proposal.Status) {
		return workflow.ErrProposalNotDeletable
	}

	reviewers, err := s.proposals.CountReviewers(ctx, id)
	if err != nil {
		return err
	}
	if reviewers > 0 {
		return workflow.ErrProposalHasReviewers
	}

	return s.proposals.Delete(ctx, id)
}

// Submit moves a DRAFT or REVISI proposal to DIAJUKAN
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.Submit")
	defer span.End()

	proposal, err := s.ownedProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.Transition(proposal.Status, models.StatusSubmitted); err != nil {
		return nil, err
	}
	if !proposal.IsComplete() {
		return nil, workflow.ErrProposalIncomplete
	}

	periode, err := s.periods.GetByID(ctx, proposal.PeriodeID)
	if err != nil {
		return nil, err
	}
	if !periode.IsOpen(proposalrepo.Now()) {
		return nil, workflow.ErrPeriodNotOpen
	}

	if err := s.transition(ctx, proposal, models.StatusSubmitted); err != nil {
		return nil, err
	}

	s.emitter.EmitProposalStatusChanged(ctx, "proposal.submitted", proposal.ID.String(), nil)
	return proposal, nil
}

// AssignReviewers attaches reviewers to a DIAJUKAN proposal and moves it to
// DIREVIEW. Both writes share one transaction.
func (s *Service) AssignReviewers(ctx context.Context, id uuid.UUID, reviewerIDs []uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.AssignReviewers")
	defer span.End()

	if len(reviewerIDs) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "at least one reviewer is required")
	}

	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := workflow.Transition(proposal.Status, models.StatusInReview); err != nil {
		return err
	}

	for _, reviewerID := range reviewerIDs {
		if _, err := s.faculty.GetByID(ctx, reviewerID); err != nil {
			return httperror.NewHTTPErrorf(http.StatusBadRequest, "reviewer %s not found", reviewerID)
		}
	}

	ctxTx, tx, err := s.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctxTx)

	if err := s.proposals.AssignReviewers(ctxTx, id, reviewerIDs); err != nil {
		return err
	}
	if err := s.proposals.UpdateStatus(ctxTx, id, proposal.Status, models.StatusInReview); err != nil {
		return err
	}

	if err := tx.Commit(ctxTx); err != nil {
		return err
	}

	metrics.RecordTransition(string(proposal.Status), string(models.StatusInReview))
	s.emitter.EmitProposalStatusChanged(ctx, "proposal.review_started", id.String(), map[string]any{
		"reviewers": len(reviewerIDs),
	})
	return nil
}

// ListReviewers retrieves the reviewer assignments on a proposal
func (s *Service) ListReviewers(ctx context.Context, proposalID uuid.UUID) ([]*models.ProposalReviewer, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.ListReviewers")
	defer span.End()

	return s.proposals.ListReviewers(ctx, proposalID)
}

// CompleteReview records the caller's review score and comments
func (s *Service) CompleteReview(ctx context.Context, proposalID uuid.UUID, nilai float64, komentar string) error {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.CompleteReview")
	defer span.End()

	reviewerID, err := s.callerDosen(ctx)
	if err != nil {
		return err
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal.Status != models.StatusInReview {
		return workflow.ErrInvalidTransition
	}

	return s.proposals.CompleteReview(ctx, proposalID, reviewerID, nilai, komentar)
}

// Approve moves a fully reviewed proposal to DITERIMA
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return s.decide(ctx, id, models.StatusAccepted, "proposal.approved", nil)
}

// Reject moves a fully reviewed proposal to DITOLAK
func (s *Service) Reject(ctx context.Context, id uuid.UUID, komentar string) (*models.Proposal, error) {
	return s.decide(ctx, id, models.StatusRejected, "proposal.rejected", &komentar)
}

// RequestRevision sends a reviewed proposal back to the investigator
func (s *Service) RequestRevision(ctx context.Context, id uuid.UUID, komentar string) (*models.Proposal, error) {
	return s.decide(ctx, id, models.StatusRevision, "proposal.revision_requested", &komentar)
}

func (s *Service) decide(ctx context.Context, id uuid.UUID, to models.ProposalStatus, eventType string, komentar *string) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.decide")
	defer span.End()

	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.Transition(proposal.Status, to); err != nil {
		return nil, err
	}

	pending, err := s.proposals.CountPendingReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, workflow.ErrReviewsIncomplete
	}

	if komentar != nil {
		proposal.KomentarReviewer = komentar
		if _, err := s.proposals.Update(ctx, proposal); err != nil {
			return nil, err
		}
	}

	if err := s.transition(ctx, proposal, to); err != nil {
		return nil, err
	}

	s.emitter.EmitProposalStatusChanged(ctx, eventType, id.String(), nil)
	return proposal, nil
}

// SetClearance records the administrative clearance decision along with the
// reviewer, a note and a timestamp. The note is mandatory when clearance
// fails. A failed clearance blocks seminar scheduling but does not move the
// proposal.
func (s *Service) SetClearance(ctx context.Context, id uuid.UUID, clearance models.ClearanceStatus, catatan *string) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.SetClearance")
	defer span.End()

	decidedBy, err := uuid.Parse(utils.GetUserID(ctx))
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	if clearance == models.ClearanceFailed && (catatan == nil || *catatan == "") {
		return nil, workflow.ErrClearanceNoteRequired
	}

	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch proposal.Status {
	case models.StatusSubmitted, models.StatusInReview, models.StatusAccepted, models.StatusRunning:
	default:
		return nil, workflow.ErrProposalNotAccepted
	}

	if err := s.proposals.SetClearance(ctx, id, clearance, catatan, decidedBy); err != nil {
		return nil, err
	}

	now := proposalrepo.Now()
	proposal.Clearance = &clearance
	proposal.ClearanceCatatan = catatan
	proposal.ClearanceBy = &decidedBy
	proposal.ClearanceAt = &now
	s.emitter.EmitProposalStatusChanged(ctx, "proposal.clearance_recorded", id.String(), map[string]any{
		"clearance": clearance,
	})
	return proposal, nil
}

// Complete closes out a running grant once its final report has been
// approved, moving it to SELESAI.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalService.Complete")
	defer span.End()

	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.Transition(proposal.Status, models.StatusCompleted); err != nil {
		return nil, err
	}

	verified, err := s.finalReport.IsFinalVerified(ctx, id)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, workflow.ErrFinalReportNotVerified
	}

	if err := s.transition(ctx, proposal, models.StatusCompleted); err != nil {
		return nil, err
	}

	s.emitter.EmitProposalStatusChanged(ctx, "proposal.completed", id.String(), nil)
	return proposal, nil
}

// transition applies a validated status change and records the metric
func (s *Service) transition(ctx context.Context, proposal *models.Proposal, to models.ProposalStatus) error {
	from := proposal.Status
	if err := s.proposals.UpdateStatus(ctx, proposal.ID, from, to); err != nil {
		return err
	}
	proposal.Status = to
	metrics.RecordTransition(string(from), string(to))
	return nil
}

// callerDosen resolves the authenticated user to a faculty record
func (s *Service) callerDosen(ctx context.Context) (uuid.UUID, error) {
	userID := utils.GetUserID(ctx)
	if userID == "" {
		return uuid.Nil, httperror.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, workflow.ErrNotInvestigator
	}
	if _, err := s.faculty.GetByID(ctx, id); err != nil {
		return uuid.Nil, workflow.ErrNotInvestigator
	}
	return id, nil
}

// ownedProposal loads a proposal and checks the caller may act on it
func (s *Service) ownedProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if utils.GetUserRole(ctx) == RoleAdmin {
		return proposal, nil
	}
	if proposal.KetuaID.String() != utils.GetUserID(ctx) {
		return nil, httperror.NewHTTPError(http.StatusForbidden, "not the proposal owner")
	}
	return proposal, nil
}
