package luaran

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

// LuaranRepository defines the interface for research output data access
type LuaranRepository interface {
	Create(ctx context.Context, output *models.Luaran) (*models.Luaran, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Luaran, error)
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.Luaran, error)
	SetVerification(ctx context.Context, id uuid.UUID, status models.LuaranStatus, verifiedBy uuid.UUID, catatan *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountVerified(ctx context.Context, proposalID uuid.UUID) (int, error)
}

// Repository implements LuaranRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new luaran repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create stores a claimed research output
func (r *Repository) Create(ctx context.Context, output *models.Luaran) (*models.Luaran, error) {
	ctx, span := tracing.StartSpan(ctx, "LuaranRepository.Create")
	defer span.End()

	if output.ID == uuid.Nil {
		output.ID = uuid.New()
	}

	now := Now()
	output.CreatedAt = now
	output.UpdatedAt = now

	row := FromLuaran(output)
	ib := luaranStruct.InsertInto(luaranTable, row)
	sql, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":          output.ID,
		"proposal_id": output.ProposalID,
		"jenis":       output.Jenis,
	}).Debug("Creating luaran")

	_, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create luaran")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create luaran")
	}

	return output, nil
}

// GetByID retrieves a research output by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Luaran, error) {
	ctx, span := tracing.StartSpan(ctx, "LuaranRepository.GetByID")
	defer span.End()

	sb := luaranStruct.SelectFrom(luaranTable)
	sb.Where(sb.Equal("id", id.String()))

	sql, args := sb.Build()

	var row LuaranRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "luaran not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get luaran")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get luaran")
	}

	return ToLuaran(&row), nil
}

// ListByProposal retrieves the outputs claimed on a proposal
func (r *Repository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.Luaran, error) {
	ctx, span := tracing.StartSpan(ctx, "LuaranRepository.ListByProposal")
	defer span.End()

	sb := luaranStruct.SelectFrom(luaranTable)
	sb.Where(sb.Equal("proposal_id", proposalID.String()))
	sb.OrderBy("created_at").Desc()

	sql, args := sb.Build()

	var rows []LuaranRow
	err := r.db.SelectContext(ctx, &rows, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list luaran")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list luaran")
	}

	return ToLuarans(rows), nil
}

// SetVerification records a verification decision on a pending output
func (r *Repository) SetVerification(ctx context.Context, id uuid.UUID, status models.LuaranStatus, verifiedBy uuid.UUID, catatan *string) error {
	ctx, span := tracing.StartSpan(ctx, "LuaranRepository.SetVerification")
	defer span.End()

	now := Now()
	ub := database.NewUpdateBuilder()
	ub.Update(luaranTable)
	assignments := []string{
		ub.Assign("status", string(status)),
		ub.Assign("verified_by", verifiedBy.String()),
		ub.Assign("verified_at", now),
		ub.Assign("updated_at", now),
	}
	if catatan != nil {
		assignments = append(assignments, ub.Assign("catatan", *catatan))
	}
	ub.Set(assignments...)
	ub.Where(
		ub.Equal("id", id.String()),
		ub.Equal("status", string(models.OutputPending)),
	)

	sql, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":     id,
		"status": status,
	}).Debug("Verifying luaran")

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to verify luaran")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to verify luaran")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "pending luaran not found")
	}

	return nil
}

// Delete removes a research output
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "LuaranRepository.Delete")
	defer span.End()

	db := luaranStruct.DeleteFrom(luaranTable)
	db.Where(db.Equal("id", id.String()))

	sql, args := db.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id": id,
	}).Debug("Deleting luaran")

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete luaran")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete luaran")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "luaran not found")
	}

	return nil
}

// CountVerified counts the verified outputs on a proposal
func (r *Repository) CountVerified(ctx context.Context, proposalID uuid.UUID) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "LuaranRepository.CountVerified")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(luaranTable)
	sb.Where(
		sb.Equal("proposal_id", proposalID.String()),
		sb.Equal("status", string(models.OutputVerified)),
	)

	sql, args := sb.Build()

	var count int
	err := r.db.GetContext(ctx, &count, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count verified luaran")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count verified luaran")
	}

	return count, nil
}
