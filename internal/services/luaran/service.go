// Package luaran implements research output claims and their verification,
// including the category eligibility rules per funding scheme.
package luaran

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	luaranrepo "github.com/Ramsey-B/aster/internal/repositories/luaran"
	utils "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/metrics"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

// RoleAdmin may verify outputs
const RoleAdmin = "ADMIN_LPPM"

// ProposalReader resolves proposals
type ProposalReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
}

// SkemaReader resolves funding schemes
type SkemaReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skema, error)
}

// FinalReportChecker answers whether a proposal's final report was approved
type FinalReportChecker interface {
	IsFinalVerified(ctx context.Context, proposalID uuid.UUID) (bool, error)
}

// Service implements the research output operations
type Service struct {
	logger      ectologger.Logger
	outputs     luaranrepo.LuaranRepository
	proposals   ProposalReader
	schemes     SkemaReader
	finalReport FinalReportChecker
	emitter     *events.Emitter
}

// NewService creates a new luaran service
func NewService(
	logger ectologger.Logger,
	outputs luaranrepo.LuaranRepository,
	proposals ProposalReader,
	schemes SkemaReader,
	finalReport FinalReportChecker,
	emitter *events.Emitter,
) *Service {
	return &Service{
		logger:      logger,
		outputs:     outputs,
		proposals:   proposals,
		schemes:     schemes,
		finalReport: finalReport,
		emitter:     emitter,
	}
}

// CreateInput carries the fields for a claimed output
type CreateInput struct {
	ProposalID uuid.UUID
	Jenis      models.LuaranJenis
	Judul      string
	URL        *string
	FileBukti  *string
}

// Create claims a research output on a running or completed proposal. The
// category must be eligible under the proposal's funding scheme, and the
// final report must already be verified.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Luaran, error) {
	ctx, span := tracing.StartSpan(ctx, "LuaranService.Create")
	defer span.End()

	if input.Judul == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "judul is required")
	}

	proposal, err := s.proposals.GetByID(ctx, input.ProposalID)
	if err != nil {
		return nil, err
	}
	switch proposal.Status {
	case models.StatusRunning, models.StatusCompleted:
	default:
		return nil, workflow.ErrProposalNotRunning
	}

	if proposal.KetuaID.String() != utils.GetUserID(ctx) && utils.GetUserRole(ctx) != RoleAdmin {
		return nil, httperror.NewHTTPError(http.StatusForbidden, "not the proposal owner")
	}

	skema, err := s.schemes.GetByID(ctx, proposal.SkemaID)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckOutputEligibility(skema.Tipe, input.Jenis); err != nil {
		return nil, err
	}

	verified, err := s.finalReport.IsFinalVerified(ctx, input.ProposalID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, workflow.ErrFinalReportNotVerified
	}

	output := &models.Luaran{
		ProposalID: input.ProposalID,
		Jenis:      input.Jenis,
		Judul:      input.Judul,
		URL:        input.URL,
		FileBukti:  input.FileBukti,
		Status:     models.OutputPending,
	}

	created, err := s.outputs.Create(ctx, output)
	if err != nil {
		return nil, err
	}

	s.emitter.EmitOutputEvent(ctx, "luaran.created", input.ProposalID.String(), created.ID.String(), map[string]any{
		"jenis": input.Jenis,
	})
	return created, nil
}

// List retrieves the outputs claimed on a proposal
func (s *Service) List(ctx context.Context, proposalID uuid.UUID) ([]*models.Luaran, error) {
	ctx, span := tracing.StartSpan(ctx, "LuaranService.List")
	defer span.End()

	return s.outputs.ListByProposal(ctx, proposalID)
}

// Verify records a verification decision on a pending output
func (s *Service) Verify(ctx context.Context, id uuid.UUID, approve bool, catatan *string) (*models.Luaran, error) {
	ctx, span := tracing.StartSpan(ctx, "LuaranService.Verify")
	defer span.End()

	verifiedBy, err := uuid.Parse(utils.GetUserID(ctx))
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	output, err := s.outputs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if output.Status != models.OutputPending {
		return nil, workflow.ErrOutputVerified
	}

	status := models.OutputRejected
	eventType := "luaran.rejected"
	if approve {
		status = models.OutputVerified
		eventType = "luaran.verified"
	}

	if err := s.outputs.SetVerification(ctx, id, status, verifiedBy, catatan); err != nil {
		return nil, err
	}

	output.Status = status
	output.VerifiedBy = &verifiedBy
	output.Catatan = catatan

	metrics.OutputVerificationsTotal.WithLabelValues(string(output.Jenis), string(status)).Inc()
	s.emitter.EmitOutputEvent(ctx, eventType, output.ProposalID.String(), id.String(), map[string]any{
		"jenis": output.Jenis,
	})

	return output, nil
}

// Delete removes an output that has not been verified
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "LuaranService.Delete")
	defer span.End()

	output, err := s.outputs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if output.Status == models.OutputVerified {
		return workflow.ErrOutputVerified
	}

	proposal, err := s.proposals.GetByID(ctx, output.ProposalID)
	if err != nil {
		return err
	}
	if proposal.KetuaID.String() != utils.GetUserID(ctx) && utils.GetUserRole(ctx) != RoleAdmin {
		return httperror.NewHTTPError(http.StatusForbidden, "not the proposal owner")
	}

	return s.outputs.Delete(ctx, id)
}
