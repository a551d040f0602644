// Package pencairan implements the three tranche disbursement ledger and its
// gates: the contract gate for the first tranche, the monitoring gate for the
// second, and the output gate for the third.
package pencairan

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	pencairanrepo "github.com/Ramsey-B/aster/internal/repositories/pencairan"
	utils "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/metrics"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/redis"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

// progressVerificationsRequired is the approved progress report count gating
// the second tranche
const progressVerificationsRequired = 2

// requestLockTTL bounds how long a proposal's ledger is locked during a
// tranche request
const requestLockTTL = 10 * time.Second

// ProposalReader resolves proposals
type ProposalReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
}

// SkemaReader resolves funding schemes
type SkemaReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skema, error)
}

// ContractReader resolves the contract for a proposal
type ContractReader interface {
	GetByProposalID(ctx context.Context, proposalID uuid.UUID) (*models.Kontrak, error)
}

// MonitoringReader counts approved reports
type MonitoringReader interface {
	CountApproved(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack) (int, error)
}

// OutputReader counts verified outputs
type OutputReader interface {
	CountVerified(ctx context.Context, proposalID uuid.UUID) (int, error)
}

// Service implements the disbursement operations
type Service struct {
	logger     ectologger.Logger
	ledger     pencairanrepo.PencairanRepository
	proposals  ProposalReader
	schemes    SkemaReader
	contracts  ContractReader
	monitoring MonitoringReader
	outputs    OutputReader
	locker     *redis.Locker
	emitter    *events.Emitter
}

// NewService creates a new pencairan service. A nil locker skips the
// distributed lock; the database unique constraint still rejects duplicates.
func NewService(
	logger ectologger.Logger,
	ledger pencairanrepo.PencairanRepository,
	proposals ProposalReader,
	schemes SkemaReader,
	contracts ContractReader,
	monitoring MonitoringReader,
	outputs OutputReader,
	locker *redis.Locker,
	emitter *events.Emitter,
) *Service {
	return &Service{
		logger:     logger,
		ledger:     ledger,
		proposals:  proposals,
		schemes:    schemes,
		contracts:  contracts,
		monitoring: monitoring,
		outputs:    outputs,
		locker:     locker,
		emitter:    emitter,
	}
}

// Request opens a ledger entry for a tranche after its gates pass. The
// amount is derived from the scheme, never taken from the caller.
func (s *Service) Request(ctx context.Context, proposalID uuid.UUID, termin models.Tranche) (*models.Pencairan, error) {
	ctx, span := tracing.StartSpan(ctx, "PencairanService.Request")
	defer span.End()

	if !termin.Valid() {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "termin must be TERMIN_1, TERMIN_2 or TERMIN_3")
	}

	requestedBy, err := uuid.Parse(utils.GetUserID(ctx))
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	switch proposal.Status {
	case models.StatusAccepted, models.StatusRunning, models.StatusCompleted:
	default:
		return nil, workflow.ErrProposalNotActive
	}

	if err := s.checkGates(ctx, proposal, termin); err != nil {
		return nil, err
	}

	skema, err := s.schemes.GetByID(ctx, proposal.SkemaID)
	if err != nil {
		return nil, err
	}

	entry := &models.Pencairan{
		ProposalID:  proposalID,
		Termin:      termin,
		Jumlah:      models.TrancheAmount(skema.DanaMaksimal, termin),
		Status:      models.DisbursementPending,
		RequestedBy: requestedBy,
	}

	create := func() error {
		created, err := s.ledger.Create(ctx, entry)
		if err != nil {
			return err
		}
		entry = created
		return nil
	}

	if s.locker != nil {
		err = s.locker.WithLock(ctx, "pencairan:"+proposalID.String(), requestLockTTL, create)
	} else {
		err = create()
	}
	if errors.Is(err, workflow.ErrTrancheAlreadyRequested) {
		// contract signing may have opened the first tranche already; a
		// request that finds the entry still pending returns it instead of
		// failing
		existing, getErr := s.ledger.GetByProposalAndTranche(ctx, proposalID, termin)
		if getErr != nil {
			return nil, getErr
		}
		if existing.Status == models.DisbursementPending {
			return existing, nil
		}
		return nil, err
	}
	if err != nil {
		if _, ok := workflow.AsGateError(err); !ok {
			s.logger.WithContext(ctx).WithError(err).Error("Failed to open tranche")
		}
		return nil, err
	}

	metrics.RecordTrancheRequest(string(termin), string(models.DisbursementPending))
	s.emitter.EmitDisbursementEvent(ctx, "pencairan.requested", proposalID.String(), entry.ID.String(), map[string]any{
		"termin": termin,
		"jumlah": entry.Jumlah,
	})

	return entry, nil
}

// List retrieves the ledger for a proposal
func (s *Service) List(ctx context.Context, proposalID uuid.UUID) ([]*models.Pencairan, error) {
	ctx, span := tracing.StartSpan(ctx, "PencairanService.List")
	defer span.End()

	return s.ledger.ListByProposal(ctx, proposalID)
}

// Verify releases or rejects a pending ledger entry. Releasing requires a
// proof of transfer file.
func (s *Service) Verify(ctx context.Context, id uuid.UUID, release bool, catatan, fileBukti *string) (*models.Pencairan, error) {
	ctx, span := tracing.StartSpan(ctx, "PencairanService.Verify")
	defer span.End()

	verifiedBy, err := uuid.Parse(utils.GetUserID(ctx))
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	entry, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := models.DisbursementRejected
	eventType := "pencairan.rejected"
	if release {
		if fileBukti == nil || *fileBukti == "" {
			return nil, workflow.ErrProofFileRequired
		}
		status = models.DisbursementReleased
		eventType = "pencairan.released"
	}

	if err := s.ledger.SetDecision(ctx, id, status, verifiedBy, catatan, fileBukti); err != nil {
		return nil, err
	}

	entry.Status = status
	entry.VerifiedBy = &verifiedBy
	entry.Catatan = catatan
	if release {
		entry.FileBukti = fileBukti
	}

	metrics.RecordTrancheRequest(string(entry.Termin), string(status))
	s.emitter.EmitDisbursementEvent(ctx, eventType, entry.ProposalID.String(), id.String(), map[string]any{
		"termin": entry.Termin,
		"jumlah": entry.Jumlah,
	})

	return entry, nil
}

// checkGates enforces the tranche preconditions. A missing record is a gate
// failure; a storage fault propagates as-is.
func (s *Service) checkGates(ctx context.Context, proposal *models.Proposal, termin models.Tranche) error {
	kontrak, err := s.contracts.GetByProposalID(ctx, proposal.ID)
	if err != nil {
		if isNotFound(err) {
			return workflow.ErrContractNotSigned
		}
		return err
	}
	if !kontrak.IsSigned() {
		return workflow.ErrContractNotSigned
	}

	if prior := termin.Prior(); prior != "" {
		priorEntry, err := s.ledger.GetByProposalAndTranche(ctx, proposal.ID, prior)
		if err != nil {
			if isNotFound(err) {
				return workflow.ErrPriorTrancheNotReleased
			}
			return err
		}
		if priorEntry.Status != models.DisbursementReleased {
			return workflow.ErrPriorTrancheNotReleased
		}
	}

	switch termin {
	case models.Tranche2:
		approved, err := s.monitoring.CountApproved(ctx, proposal.ID, models.TrackProgress)
		if err != nil {
			return err
		}
		if approved < progressVerificationsRequired {
			return workflow.ErrInsufficientProgressVerifications
		}
	case models.Tranche3:
		verified, err := s.outputs.CountVerified(ctx, proposal.ID)
		if err != nil {
			return err
		}
		if verified == 0 {
			return workflow.ErrNoVerifiedOutput
		}
	}

	return nil
}

func isNotFound(err error) bool {
	return httperror.IsHTTPError(err) && httperror.GetStatusCode(err) == http.StatusNotFound
}
