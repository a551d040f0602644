package pencairan

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

// PencairanRepository defines the interface for disbursement data access
type PencairanRepository interface {
	Create(ctx context.Context, entry *models.Pencairan) (*models.Pencairan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pencairan, error)
	GetByProposalAndTranche(ctx context.Context, proposalID uuid.UUID, termin models.Tranche) (*models.Pencairan, error)
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.Pencairan, error)
	SetDecision(ctx context.Context, id uuid.UUID, status models.PencairanStatus, verifiedBy uuid.UUID, catatan, fileBukti *string) error
}

// Repository implements PencairanRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new pencairan repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a ledger entry. The (proposal_id, termin) unique constraint
// makes a concurrent duplicate request lose with ErrTrancheAlreadyRequested.
func (r *Repository) Create(ctx context.Context, entry *models.Pencairan) (*models.Pencairan, error) {
	ctx, span := tracing.StartSpan(ctx, "PencairanRepository.Create")
	defer span.End()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	now := Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	row := FromPencairan(entry)
	ib := pencairanStruct.InsertInto(pencairanTable, row)
	sql, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":          entry.ID,
		"proposal_id": entry.ProposalID,
		"termin":      entry.Termin,
		"jumlah":      entry.Jumlah,
	}).Debug("Creating pencairan entry")

	_, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, workflow.ErrTrancheAlreadyRequested
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create pencairan entry")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create pencairan entry")
	}

	return entry, nil
}

// GetByID retrieves a ledger entry by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pencairan, error) {
	ctx, span := tracing.StartSpan(ctx, "PencairanRepository.GetByID")
	defer span.End()

	sb := pencairanStruct.SelectFrom(pencairanTable)
	sb.Where(sb.Equal("id", id.String()))

	sql, args := sb.Build()

	var row PencairanRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "pencairan not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get pencairan")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get pencairan")
	}

	return ToPencairan(&row), nil
}

// GetByProposalAndTranche retrieves the entry for one tranche of a proposal
func (r *Repository) GetByProposalAndTranche(ctx context.Context, proposalID uuid.UUID, termin models.Tranche) (*models.Pencairan, error) {
	ctx, span := tracing.StartSpan(ctx, "PencairanRepository.GetByProposalAndTranche")
	defer span.End()

	sb := pencairanStruct.SelectFrom(pencairanTable)
	sb.Where(
		sb.Equal("proposal_id", proposalID.String()),
		sb.Equal("termin", string(termin)),
	)

	sql, args := sb.Build()

	var row PencairanRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "pencairan not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get pencairan by tranche")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get pencairan")
	}

	return ToPencairan(&row), nil
}

// ListByProposal retrieves the full ledger for a proposal in tranche order
func (r *Repository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.Pencairan, error) {
	ctx, span := tracing.StartSpan(ctx, "PencairanRepository.ListByProposal")
	defer span.End()

	sb := pencairanStruct.SelectFrom(pencairanTable)
	sb.Where(sb.Equal("proposal_id", proposalID.String()))
	sb.OrderBy("termin")

	sql, args := sb.Build()

	var rows []PencairanRow
	err := r.db.SelectContext(ctx, &rows, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list pencairan entries")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list pencairan entries")
	}

	return ToPencairans(rows), nil
}

// SetDecision releases or rejects a pending ledger entry
func (r *Repository) SetDecision(ctx context.Context, id uuid.UUID, status models.PencairanStatus, verifiedBy uuid.UUID, catatan, fileBukti *string) error {
	ctx, span := tracing.StartSpan(ctx, "PencairanRepository.SetDecision")
	defer span.End()

	now := Now()
	ub := database.NewUpdateBuilder()
	ub.Update(pencairanTable)
	assignments := []string{
		ub.Assign("status", string(status)),
		ub.Assign("verified_by", verifiedBy.String()),
		ub.Assign("updated_at", now),
	}
	if status == models.DisbursementReleased {
		assignments = append(assignments, ub.Assign("tanggal_cair", now))
	}
	if fileBukti != nil {
		assignments = append(assignments, ub.Assign("file_bukti", *fileBukti))
	}
	if catatan != nil {
		assignments = append(assignments, ub.Assign("catatan", *catatan))
	}
	ub.Set(assignments...)
	ub.Where(
		ub.Equal("id", id.String()),
		ub.Equal("status", string(models.DisbursementPending)),
	)

	sql, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":     id,
		"status": status,
	}).Debug("Recording pencairan decision")

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to record pencairan decision")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to record pencairan decision")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return workflow.ErrTrancheNotPending
	}

	return nil
}
