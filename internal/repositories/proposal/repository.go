package proposal

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

// ListFilter narrows List results
type ListFilter struct {
	PeriodeID *uuid.UUID
	KetuaID   *uuid.UUID
	Status    *models.ProposalStatus
	Limit     int
	Offset    int
}

// ProposalRepository defines the interface for proposal data access
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Proposal, error)
	Update(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ProposalStatus) error
	SetClearance(ctx context.Context, id uuid.UUID, clearance models.ClearanceStatus, catatan *string, decidedBy uuid.UUID) error
	SetJadwalSeminar(ctx context.Context, id uuid.UUID, jadwal time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	AssignReviewers(ctx context.Context, proposalID uuid.UUID, reviewerIDs []uuid.UUID) error
	ListReviewers(ctx context.Context, proposalID uuid.UUID) ([]*models.ProposalReviewer, error)
	CompleteReview(ctx context.Context, proposalID, reviewerID uuid.UUID, nilai float64, komentar string) error
	CountReviewers(ctx context.Context, proposalID uuid.UUID) (int, error)
	CountPendingReviews(ctx context.Context, proposalID uuid.UUID) (int, error)
}

// Repository implements ProposalRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new proposal repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new proposal. The (periode_id, ketua_id) unique constraint
// rejects a second lead proposal in the same period.
func (r *Repository) Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.Create")
	defer span.End()

	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}

	now := Now()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now

	row := FromProposal(proposal)
	ib := proposalStruct.InsertInto(proposalTable, row)
	sql, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":         proposal.ID,
		"periode_id": proposal.PeriodeID,
		"ketua_id":   proposal.KetuaID,
	}).Debug("Creating proposal")

	_, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, workflow.ErrDuplicateKetua
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create proposal")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create proposal")
	}

	return proposal, nil
}

// GetByID retrieves a proposal by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.GetByID")
	defer span.End()

	sb := proposalStruct.SelectFrom(proposalTable)
	sb.Where(sb.Equal("id", id.String()))

	sql, args := sb.Build()

	var row ProposalRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "proposal not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get proposal")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get proposal")
	}

	return ToProposal(&row), nil
}

// List retrieves proposals matching the filter
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.List")
	defer span.End()

	sb := proposalStruct.SelectFrom(proposalTable)
	if filter.PeriodeID != nil {
		sb.Where(sb.Equal("periode_id", filter.PeriodeID.String()))
	}
	if filter.KetuaID != nil {
		sb.Where(sb.Equal("ketua_id", filter.KetuaID.String()))
	}
	if filter.Status != nil {
		sb.Where(sb.Equal("status", string(*filter.Status)))
	}
	sb.OrderBy("created_at").Desc()
	if filter.Limit > 0 {
		sb.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		sb.Offset(filter.Offset)
	}

	sql, args := sb.Build()

	var rows []ProposalRow
	err := r.db.SelectContext(ctx, &rows, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list proposals")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list proposals")
	}

	return ToProposals(rows), nil
}

// Update updates a proposal's editable fields
func (r *Repository) Update(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.Update")
	defer span.End()

	proposal.UpdatedAt = Now()

	ub := proposalStruct.Update(proposalTable, FromProposal(proposal))
	ub.Where(ub.Equal("id", proposal.ID.String()))

	sql, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id": proposal.ID,
	}).Debug("Updating proposal")

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update proposal")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update proposal")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "proposal not found")
	}

	return proposal, nil
}

// UpdateStatus moves a proposal between statuses. The WHERE clause pins the
// expected current status so concurrent transitions lose cleanly.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ProposalStatus) error {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.UpdateStatus")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(proposalTable)
	assignments := []string{
		ub.Assign("status", string(to)),
		ub.Assign("updated_at", Now()),
	}
	if to == models.StatusSubmitted {
		assignments = append(assignments, ub.Assign("submitted_at", Now()))
	}
	ub.Set(assignments...)
	ub.Where(
		ub.Equal("id", id.String()),
		ub.Equal("status", string(from)),
	)

	sql, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":   id,
		"from": from,
		"to":   to,
	}).Debug("Updating proposal status")

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update proposal status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update proposal status")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return workflow.ErrInvalidTransition
	}

	return nil
}

// SetClearance records the administrative clearance decision along with who
// decided it and when
func (r *Repository) SetClearance(ctx context.Context, id uuid.UUID, clearance models.ClearanceStatus, catatan *string, decidedBy uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.SetClearance")
	defer span.End()

	now := Now()
	ub := database.NewUpdateBuilder()
	ub.Update(proposalTable)
	assignments := []string{
		ub.Assign("clearance", string(clearance)),
		ub.Assign("clearance_by", decidedBy.String()),
		ub.Assign("clearance_at", now),
		ub.Assign("updated_at", now),
	}
	if catatan != nil {
		assignments = append(assignments, ub.Assign("clearance_catatan", *catatan))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id.String()))

	sql, args := ub.Build()

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to set proposal clearance")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to set proposal clearance")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "proposal not found")
	}

	return nil
}

// SetJadwalSeminar records the expected defense date on a proposal
func (r *Repository) SetJadwalSeminar(ctx context.Context, id uuid.UUID, jadwal time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.SetJadwalSeminar")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(proposalTable)
	ub.Set(
		ub.Assign("jadwal_seminar", jadwal),
		ub.Assign("updated_at", Now()),
	)
	ub.Where(ub.Equal("id", id.String()))

	sql, args := ub.Build()

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to set proposal defense date")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to set proposal defense date")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "proposal not found")
	}

	return nil
}

// Delete deletes a proposal
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.Delete")
	defer span.End()

	db := proposalStruct.DeleteFrom(proposalTable)
	db.Where(db.Equal("id", id.String()))

	sql, args := db.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id": id,
	}).Debug("Deleting proposal")

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete proposal")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete proposal")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "proposal not found")
	}

	return nil
}
