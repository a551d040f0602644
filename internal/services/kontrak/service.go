// Package kontrak implements the contract gate: issuing a contract for an
// accepted proposal, recording the signed documents, activating the grant
// and opening the first disbursement tranche.
package kontrak

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	kontrakrepo "github.com/Ramsey-B/aster/internal/repositories/kontrak"
	utils "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/metrics"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

// ProposalStore is the slice of the proposal repository this service needs
type ProposalStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ProposalStatus) error
}

// SkemaReader resolves funding schemes
type SkemaReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skema, error)
}

// LedgerWriter opens disbursement ledger entries
type LedgerWriter interface {
	Create(ctx context.Context, entry *models.Pencairan) (*models.Pencairan, error)
	GetByProposalAndTranche(ctx context.Context, proposalID uuid.UUID, termin models.Tranche) (*models.Pencairan, error)
}

// Service implements the contract operations
type Service struct {
	db        database.DB
	logger    ectologger.Logger
	contracts kontrakrepo.KontrakRepository
	proposals ProposalStore
	schemes   SkemaReader
	ledger    LedgerWriter
	emitter   *events.Emitter
}

// NewService creates a new kontrak service
func NewService(
	db database.DB,
	logger ectologger.Logger,
	contracts kontrakrepo.KontrakRepository,
	proposals ProposalStore,
	schemes SkemaReader,
	ledger LedgerWriter,
	emitter *events.Emitter,
) *Service {
	return &Service{
		db:        db,
		logger:    logger,
		contracts: contracts,
		proposals: proposals,
		schemes:   schemes,
		ledger:    ledger,
		emitter:   emitter,
	}
}

// Create issues a DRAFT contract for an accepted proposal
func (s *Service) Create(ctx context.Context, proposalID uuid.UUID, nomorKontrak string) (*models.Kontrak, error) {
	ctx, span := tracing.StartSpan(ctx, "KontrakService.Create")
	defer span.End()

	if nomorKontrak == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "nomor_kontrak is required")
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.StatusAccepted {
		return nil, workflow.ErrProposalNotAccepted
	}

	kontrak := &models.Kontrak{
		ProposalID:   proposalID,
		NomorKontrak: nomorKontrak,
		Status:       models.ContractDraft,
	}

	created, err := s.contracts.Create(ctx, kontrak)
	if err != nil {
		return nil, err
	}

	s.emitter.EmitContractEvent(ctx, "kontrak.created", proposalID.String(), created.ID.String(), nil)
	return created, nil
}

// Get retrieves a contract
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Kontrak, error) {
	ctx, span := tracing.StartSpan(ctx, "KontrakService.Get")
	defer span.End()

	return s.contracts.GetByID(ctx, id)
}

// GetByProposal retrieves the contract for a proposal
func (s *Service) GetByProposal(ctx context.Context, proposalID uuid.UUID) (*models.Kontrak, error) {
	ctx, span := tracing.StartSpan(ctx, "KontrakService.GetByProposal")
	defer span.End()

	return s.contracts.GetByProposalID(ctx, proposalID)
}

// UploadSigned records the signed contract and decree files. Signing
// activates the grant: the contract goes ACTIVE, the proposal moves to
// BERJALAN and the first tranche is opened in the ledger, all in one
// transaction.
func (s *Service) UploadSigned(ctx context.Context, id uuid.UUID, fileKontrak, fileSK string) (*models.Kontrak, error) {
	ctx, span := tracing.StartSpan(ctx, "KontrakService.UploadSigned")
	defer span.End()

	if fileKontrak == "" || fileSK == "" {
		return nil, workflow.ErrSignedFilesRequired
	}

	kontrak, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if kontrak.IsSigned() {
		return nil, workflow.ErrContractAlreadySigned
	}

	proposal, err := s.proposals.GetByID(ctx, kontrak.ProposalID)
	if err != nil {
		return nil, err
	}
	if err := workflow.Transition(proposal.Status, models.StatusRunning); err != nil {
		return nil, err
	}

	skema, err := s.schemes.GetByID(ctx, proposal.SkemaID)
	if err != nil {
		return nil, err
	}

	requestedBy, err := uuid.Parse(utils.GetUserID(ctx))
	if err != nil {
		requestedBy = proposal.KetuaID
	}

	now := kontrakrepo.Now()
	kontrak.Status = models.ContractActive
	kontrak.FileKontrak = &fileKontrak
	kontrak.FileSK = &fileSK
	kontrak.TanggalTTD = &now

	ctxTx, tx, err := s.db.GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctxTx)

	if _, err := s.contracts.MarkSigned(ctxTx, kontrak); err != nil {
		return nil, err
	}
	if err := s.proposals.UpdateStatus(ctxTx, proposal.ID, proposal.Status, models.StatusRunning); err != nil {
		return nil, err
	}

	// the first tranche may already exist if an earlier signing attempt got
	// this far, so an existing entry is kept as-is
	firstTranche, err := s.ledger.GetByProposalAndTranche(ctxTx, proposal.ID, models.Tranche1)
	openedTranche := false
	if err != nil {
		if httperror.GetStatusCode(err) != http.StatusNotFound {
			return nil, err
		}
		firstTranche = &models.Pencairan{
			ProposalID:  proposal.ID,
			Termin:      models.Tranche1,
			Jumlah:      models.TrancheAmount(skema.DanaMaksimal, models.Tranche1),
			Status:      models.DisbursementPending,
			RequestedBy: requestedBy,
		}
		if _, err := s.ledger.Create(ctxTx, firstTranche); err != nil {
			return nil, err
		}
		openedTranche = true
	}

	if err := tx.Commit(ctxTx); err != nil {
		return nil, err
	}

	metrics.ContractsSignedTotal.Inc()
	metrics.RecordTransition(string(models.StatusAccepted), string(models.StatusRunning))
	if openedTranche {
		metrics.RecordTrancheRequest(string(models.Tranche1), string(models.DisbursementPending))
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"kontrak_id":  kontrak.ID,
		"proposal_id": proposal.ID,
	}).Info("contract signed, grant activated")

	s.emitter.EmitContractEvent(ctx, "kontrak.signed", proposal.ID.String(), kontrak.ID.String(), nil)
	if openedTranche {
		s.emitter.EmitDisbursementEvent(ctx, "pencairan.requested", proposal.ID.String(), firstTranche.ID.String(), map[string]any{
			"termin": models.Tranche1,
			"jumlah": firstTranche.Jumlah,
		})
	}

	return kontrak, nil
}
