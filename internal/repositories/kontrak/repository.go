package kontrak

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

// KontrakRepository defines the interface for kontrak data access
type KontrakRepository interface {
	Create(ctx context.Context, kontrak *models.Kontrak) (*models.Kontrak, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Kontrak, error)
	GetByProposalID(ctx context.Context, proposalID uuid.UUID) (*models.Kontrak, error)
	MarkSigned(ctx context.Context, kontrak *models.Kontrak) (*models.Kontrak, error)
}

// Repository implements KontrakRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new kontrak repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a contract. The unique proposal_id constraint rejects a
// second contract for the same proposal.
func (r *Repository) Create(ctx context.Context, kontrak *models.Kontrak) (*models.Kontrak, error) {
	ctx, span := tracing.StartSpan(ctx, "KontrakRepository.Create")
	defer span.End()

	if kontrak.ID == uuid.Nil {
		kontrak.ID = uuid.New()
	}

	now := Now()
	kontrak.CreatedAt = now
	kontrak.UpdatedAt = now

	row := FromKontrak(kontrak)
	ib := kontrakStruct.InsertInto(kontrakTable, row)
	sql, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":          kontrak.ID,
		"proposal_id": kontrak.ProposalID,
	}).Debug("Creating kontrak")

	_, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, workflow.ErrContractAlreadyExists
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create kontrak")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create kontrak")
	}

	return kontrak, nil
}

// GetByID retrieves a contract by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Kontrak, error) {
	ctx, span := tracing.StartSpan(ctx, "KontrakRepository.GetByID")
	defer span.End()

	sb := kontrakStruct.SelectFrom(kontrakTable)
	sb.Where(sb.Equal("id", id.String()))

	sql, args := sb.Build()

	var row KontrakRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "kontrak not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get kontrak")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get kontrak")
	}

	return ToKontrak(&row), nil
}

// GetByProposalID retrieves the contract for a proposal
func (r *Repository) GetByProposalID(ctx context.Context, proposalID uuid.UUID) (*models.Kontrak, error) {
	ctx, span := tracing.StartSpan(ctx, "KontrakRepository.GetByProposalID")
	defer span.End()

	sb := kontrakStruct.SelectFrom(kontrakTable)
	sb.Where(sb.Equal("proposal_id", proposalID.String()))

	sql, args := sb.Build()

	var row KontrakRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "kontrak not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get kontrak by proposal")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get kontrak")
	}

	return ToKontrak(&row), nil
}

// MarkSigned records the signed files and flips the contract to ACTIVE
func (r *Repository) MarkSigned(ctx context.Context, kontrak *models.Kontrak) (*models.Kontrak, error) {
	ctx, span := tracing.StartSpan(ctx, "KontrakRepository.MarkSigned")
	defer span.End()

	kontrak.UpdatedAt = Now()

	ub := kontrakStruct.Update(kontrakTable, FromKontrak(kontrak))
	ub.Where(
		ub.Equal("id", kontrak.ID.String()),
		ub.Equal("status", string(models.ContractDraft)),
	)

	sql, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":          kontrak.ID,
		"proposal_id": kontrak.ProposalID,
	}).Debug("Marking kontrak signed")

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to mark kontrak signed")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update kontrak")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, workflow.ErrContractAlreadySigned
	}

	return kontrak, nil
}
