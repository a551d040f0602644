// Package monitoring implements the monitoring gate: progress and final
// report submission and verification. Verification never moves the proposal
// itself; completion is a separate, explicit proposal operation.
package monitoring

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	monitoringrepo "github.com/Ramsey-B/aster/internal/repositories/monitoring"
	utils "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

// RoleAdmin may verify reports
const RoleAdmin = "ADMIN_LPPM"

// ProposalStore is the slice of the proposal repository this service needs
type ProposalStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
}

// Config tunes monitoring behavior
type Config struct {
	// AllowFinalAfterCompleted permits re-submitting a corrected final
	// report on an already completed grant. The correction resets the final
	// track to pending but never re-opens the proposal.
	AllowFinalAfterCompleted bool
}

// Service implements the monitoring operations
type Service struct {
	db        database.DB
	logger    ectologger.Logger
	reports   monitoringrepo.MonitoringRepository
	proposals ProposalStore
	emitter   *events.Emitter
	config    Config
}

// NewService creates a new monitoring service
func NewService(
	db database.DB,
	logger ectologger.Logger,
	reports monitoringrepo.MonitoringRepository,
	proposals ProposalStore,
	emitter *events.Emitter,
	config Config,
) *Service {
	return &Service{
		db:        db,
		logger:    logger,
		reports:   reports,
		proposals: proposals,
		emitter:   emitter,
		config:    config,
	}
}

// SubmitReport uploads a progress or final report. Re-submitting on a track
// supersedes any report still pending there, so the new upload is the single
// report under review.
func (s *Service) SubmitReport(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack, fileLaporan string) (*models.MonitoringReport, error) {
	ctx, span := tracing.StartSpan(ctx, "MonitoringService.SubmitReport")
	defer span.End()

	if fileLaporan == "" {
		return nil, workflow.ErrReportNotSubmitted
	}
	switch track {
	case models.TrackProgress, models.TrackFinal:
	default:
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "jenis must be KEMAJUAN or AKHIR")
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	switch {
	case proposal.Status == models.StatusRunning:
	case proposal.Status == models.StatusCompleted && track == models.TrackFinal && s.config.AllowFinalAfterCompleted:
		// corrected final report on a completed grant
	default:
		return nil, workflow.ErrProposalNotRunning
	}

	if proposal.KetuaID.String() != utils.GetUserID(ctx) && utils.GetUserRole(ctx) != RoleAdmin {
		return nil, httperror.NewHTTPError(http.StatusForbidden, "not the proposal owner")
	}

	report := &models.MonitoringReport{
		ProposalID:  proposalID,
		Jenis:       track,
		FileLaporan: fileLaporan,
		Status:      models.MonitoringPending,
	}

	ctxTx, tx, err := s.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctxTx)

	if err := s.reports.SupersedePending(ctxTx, proposalID, track); err != nil {
		return nil, err
	}
	if track == models.TrackFinal {
		// a correction on the final track withdraws an earlier approval, so
		// the grant stops counting as verified until this upload is reviewed
		if err := s.reports.SupersedeApproved(ctxTx, proposalID, track); err != nil {
			return nil, err
		}
	}
	created, err := s.reports.Create(ctxTx, report)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctxTx); err != nil {
		return nil, err
	}

	s.emitter.EmitMonitoringEvent(ctx, "monitoring.submitted", proposalID.String(), created.ID.String(), map[string]any{
		"jenis": track,
	})
	return created, nil
}

// List retrieves the reports submitted for a proposal
func (s *Service) List(ctx context.Context, proposalID uuid.UUID) ([]*models.MonitoringReport, error) {
	ctx, span := tracing.StartSpan(ctx, "MonitoringService.List")
	defer span.End()

	return s.reports.ListByProposal(ctx, proposalID)
}

// Verify records a verification decision on a pending report. The decision
// never moves the proposal; completing a grant is an explicit admin action on
// the proposal itself.
func (s *Service) Verify(ctx context.Context, reportID uuid.UUID, approve bool, catatan *string) (*models.MonitoringReport, error) {
	ctx, span := tracing.StartSpan(ctx, "MonitoringService.Verify")
	defer span.End()

	verifiedBy, err := uuid.Parse(utils.GetUserID(ctx))
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.MonitoringPending {
		return nil, workflow.ErrReportAlreadyVerified
	}

	status := models.MonitoringRejected
	if approve {
		status = models.MonitoringApproved
	}

	if err := s.reports.SetVerification(ctx, reportID, status, verifiedBy, catatan); err != nil {
		return nil, err
	}

	report.Status = status
	report.VerifiedBy = &verifiedBy
	report.Catatan = catatan

	s.emitter.EmitMonitoringEvent(ctx, "monitoring.verified", report.ProposalID.String(), reportID.String(), map[string]any{
		"jenis":  report.Jenis,
		"status": status,
	})

	return report, nil
}

// IsFinalVerified reports whether the proposal has an approved final report.
// Several downstream gates hang off this check.
func (s *Service) IsFinalVerified(ctx context.Context, proposalID uuid.UUID) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "MonitoringService.IsFinalVerified")
	defer span.End()

	count, err := s.reports.CountApproved(ctx, proposalID, models.TrackFinal)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
