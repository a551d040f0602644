// Package seminar implements seminar scheduling: defense seminars gated on
// administrative clearance, internal results seminars gated on final report
// verification and public dissemination seminars gated on a verified output.
package seminar

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	seminarrepo "github.com/Ramsey-B/aster/internal/repositories/seminar"
	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

// ProposalStore is the slice of the proposal repository this service needs
type ProposalStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	SetJadwalSeminar(ctx context.Context, id uuid.UUID, jadwal time.Time) error
}

// FinalReportChecker answers whether a proposal's final report was approved
type FinalReportChecker interface {
	IsFinalVerified(ctx context.Context, proposalID uuid.UUID) (bool, error)
}

// OutputReader counts verified research outputs
type OutputReader interface {
	CountVerified(ctx context.Context, proposalID uuid.UUID) (int, error)
}

// Service implements the seminar operations
type Service struct {
	logger      ectologger.Logger
	seminars    seminarrepo.SeminarRepository
	proposals   ProposalStore
	finalReport FinalReportChecker
	outputs     OutputReader
	emitter     *events.Emitter
}

// NewService creates a new seminar service
func NewService(
	logger ectologger.Logger,
	seminars seminarrepo.SeminarRepository,
	proposals ProposalStore,
	finalReport FinalReportChecker,
	outputs OutputReader,
	emitter *events.Emitter,
) *Service {
	return &Service{
		logger:      logger,
		seminars:    seminars,
		proposals:   proposals,
		finalReport: finalReport,
		outputs:     outputs,
		emitter:     emitter,
	}
}

// ScheduleInput carries the fields for a new seminar
type ScheduleInput struct {
	ProposalID     uuid.UUID
	Jenis          models.SeminarJenis
	TanggalSeminar time.Time
	Tempat         string
	Catatan        *string
}

// checkPrecondition enforces the scheduling gate for a seminar kind. The
// defense seminar needs administrative clearance to have passed, the internal
// results seminar needs the final report verified, and the public seminar
// needs at least one verified output.
func (s *Service) checkPrecondition(ctx context.Context, proposal *models.Proposal, jenis models.SeminarJenis) error {
	switch jenis {
	case models.SeminarProposal:
		if proposal.Clearance == nil || *proposal.Clearance != models.ClearancePassed {
			return workflow.ErrClearanceNotPassed
		}
	case models.SeminarInternal:
		verified, err := s.finalReport.IsFinalVerified(ctx, proposal.ID)
		if err != nil {
			return err
		}
		if !verified {
			return workflow.ErrFinalReportNotVerified
		}
	case models.SeminarPublic:
		count, err := s.outputs.CountVerified(ctx, proposal.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			return workflow.ErrNoVerifiedOutput
		}
	default:
		return httperror.NewHTTPError(http.StatusBadRequest, "jenis must be PROPOSAL, INTERNAL or PUBLIK")
	}
	return nil
}

// Schedule books a seminar after its kind's precondition holds. Scheduling a
// defense seminar also records the expected defense date on the proposal.
func (s *Service) Schedule(ctx context.Context, input ScheduleInput) (*models.Seminar, error) {
	ctx, span := tracing.StartSpan(ctx, "SeminarService.Schedule")
	defer span.End()

	if input.TanggalSeminar.IsZero() || input.Tempat == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "tanggal_seminar and tempat are required")
	}

	proposal, err := s.proposals.GetByID(ctx, input.ProposalID)
	if err != nil {
		return nil, err
	}

	if err := s.checkPrecondition(ctx, proposal, input.Jenis); err != nil {
		return nil, err
	}

	seminar := &models.Seminar{
		ProposalID:     input.ProposalID,
		Jenis:          input.Jenis,
		TanggalSeminar: input.TanggalSeminar,
		Tempat:         input.Tempat,
		Catatan:        input.Catatan,
		Status:         models.SeminarScheduled,
	}

	created, err := s.seminars.Create(ctx, seminar)
	if err != nil {
		return nil, err
	}

	if input.Jenis == models.SeminarProposal {
		if err := s.proposals.SetJadwalSeminar(ctx, input.ProposalID, input.TanggalSeminar); err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("Failed to record defense date on proposal")
		}
	}

	s.emitter.EmitSeminarEvent(ctx, "seminar.scheduled", input.ProposalID.String(), created.ID.String(), map[string]any{
		"jenis": input.Jenis,
	})
	return created, nil
}

// List retrieves the seminars for a proposal
func (s *Service) List(ctx context.Context, proposalID uuid.UUID) ([]*models.Seminar, error) {
	ctx, span := tracing.StartSpan(ctx, "SeminarService.List")
	defer span.End()

	return s.seminars.ListByProposal(ctx, proposalID)
}

// UpdateInput carries the updatable fields of a scheduled seminar
type UpdateInput struct {
	TanggalSeminar *time.Time
	Tempat         *string
	Catatan        *string
	Status         *models.SeminarStatus
}

// Update reschedules, completes or cancels a seminar. Only SCHEDULED
// seminars can change, and a reschedule re-runs the kind's precondition in
// case the gate no longer holds.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Seminar, error) {
	ctx, span := tracing.StartSpan(ctx, "SeminarService.Update")
	defer span.End()

	seminar, err := s.seminars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seminar.Status != models.SeminarScheduled {
		return nil, workflow.ErrSeminarNotActive
	}

	if input.TanggalSeminar != nil {
		proposal, err := s.proposals.GetByID(ctx, seminar.ProposalID)
		if err != nil {
			return nil, err
		}
		if err := s.checkPrecondition(ctx, proposal, seminar.Jenis); err != nil {
			return nil, err
		}
		seminar.TanggalSeminar = *input.TanggalSeminar
	}
	if input.Tempat != nil {
		seminar.Tempat = *input.Tempat
	}
	if input.Catatan != nil {
		seminar.Catatan = input.Catatan
	}

	eventType := "seminar.rescheduled"
	if input.Status != nil {
		switch *input.Status {
		case models.SeminarCompleted:
			eventType = "seminar.completed"
		case models.SeminarCancelled:
			eventType = "seminar.cancelled"
		case models.SeminarScheduled:
		default:
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "status must be SCHEDULED, SELESAI or DIBATALKAN")
		}
		seminar.Status = *input.Status
	}

	updated, err := s.seminars.Update(ctx, seminar)
	if err != nil {
		return nil, err
	}

	if input.TanggalSeminar != nil && seminar.Jenis == models.SeminarProposal {
		if err := s.proposals.SetJadwalSeminar(ctx, seminar.ProposalID, *input.TanggalSeminar); err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("Failed to record defense date on proposal")
		}
	}

	s.emitter.EmitSeminarEvent(ctx, eventType, seminar.ProposalID.String(), id.String(), nil)
	return updated, nil
}
