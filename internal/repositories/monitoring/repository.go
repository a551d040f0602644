package monitoring

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

// MonitoringRepository defines the interface for monitoring report data access
type MonitoringRepository interface {
	Create(ctx context.Context, report *models.MonitoringReport) (*models.MonitoringReport, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.MonitoringReport, error)
	GetLatestByTrack(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack) (*models.MonitoringReport, error)
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.MonitoringReport, error)
	SetVerification(ctx context.Context, id uuid.UUID, status models.MonitoringStatus, verifiedBy uuid.UUID, catatan *string) error
	SupersedePending(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack) error
	SupersedeApproved(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack) error
	CountApproved(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack) (int, error)
}

// Repository implements MonitoringRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new monitoring repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create stores a newly uploaded report
func (r *Repository) Create(ctx context.Context, report *models.MonitoringReport) (*models.MonitoringReport, error) {
	ctx, span := tracing.StartSpan(ctx, "MonitoringRepository.Create")
	defer span.End()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	now := Now()
	report.CreatedAt = now
	report.UpdatedAt = now

	row := FromReport(report)
	ib := reportStruct.InsertInto(monitoringTable, row)
	sql, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":          report.ID,
		"proposal_id": report.ProposalID,
		"jenis":       report.Jenis,
	}).Debug("Creating monitoring report")

	_, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create monitoring report")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create monitoring report")
	}

	return report, nil
}

// GetByID retrieves a report by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.MonitoringReport, error) {
	ctx, span := tracing.StartSpan(ctx, "MonitoringRepository.GetByID")
	defer span.End()

	sb := reportStruct.SelectFrom(monitoringTable)
	sb.Where(sb.Equal("id", id.String()))

	sql, args := sb.Build()

	var row ReportRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "monitoring report not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get monitoring report")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get monitoring report")
	}

	return ToReport(&row), nil
}

// GetLatestByTrack retrieves the most recent report on a track
func (r *Repository) GetLatestByTrack(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack) (*models.MonitoringReport, error) {
	ctx, span := tracing.StartSpan(ctx, "MonitoringRepository.GetLatestByTrack")
	defer span.End()

	sb := reportStruct.SelectFrom(monitoringTable)
	sb.Where(
		sb.Equal("proposal_id", proposalID.String()),
		sb.Equal("jenis", string(track)),
	)
	sb.OrderBy("created_at").Desc()
	sb.Limit(1)

	sql, args := sb.Build()

	var row ReportRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "monitoring report not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get latest monitoring report")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get monitoring report")
	}

	return ToReport(&row), nil
}

// ListByProposal retrieves all reports for a proposal, newest first
func (r *Repository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.MonitoringReport, error) {
	ctx, span := tracing.StartSpan(ctx, "MonitoringRepository.ListByProposal")
	defer span.End()

	sb := reportStruct.SelectFrom(monitoringTable)
	sb.Where(sb.Equal("proposal_id", proposalID.String()))
	sb.OrderBy("created_at").Desc()

	sql, args := sb.Build()

	var rows []ReportRow
	err := r.db.SelectContext(ctx, &rows, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list monitoring reports")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list monitoring reports")
	}

	return ToReports(rows), nil
}

// SetVerification records a verification decision on a pending report
func (r *Repository) SetVerification(ctx context.Context, id uuid.UUID, status models.MonitoringStatus, verifiedBy uuid.UUID, catatan *string) error {
	ctx, span := tracing.StartSpan(ctx, "MonitoringRepository.SetVerification")
	defer span.End()

	now := Now()
	ub := database.NewUpdateBuilder()
	ub.Update(monitoringTable)
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
		ub.Equal("status", string(models.MonitoringPending)),
	)

	sql, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":     id,
		"status": status,
	}).Debug("Verifying monitoring report")

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to verify monitoring report")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to verify monitoring report")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "pending monitoring report not found")
	}

	return nil
}

// SupersedePending rejects any still pending report on a track so a
// re-submission becomes the single report under review.
func (r *Repository) SupersedePending(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack) error {
	ctx, span := tracing.StartSpan(ctx, "MonitoringRepository.SupersedePending")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(monitoringTable)
	ub.Set(
		ub.Assign("status", string(models.MonitoringRejected)),
		ub.Assign("catatan", "superseded by re-submission"),
		ub.Assign("updated_at", Now()),
	)
	ub.Where(
		ub.Equal("proposal_id", proposalID.String()),
		ub.Equal("jenis", string(track)),
		ub.Equal("status", string(models.MonitoringPending)),
	)

	sql, args := ub.Build()

	_, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to supersede pending reports")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to supersede pending reports")
	}

	return nil
}

// SupersedeApproved demotes an already approved report on a track back to
// rejected. Used when a correction is re-submitted on the final track so the
// proposal is no longer considered verified until the new upload is reviewed.
func (r *Repository) SupersedeApproved(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack) error {
	ctx, span := tracing.StartSpan(ctx, "MonitoringRepository.SupersedeApproved")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(monitoringTable)
	ub.Set(
		ub.Assign("status", string(models.MonitoringRejected)),
		ub.Assign("catatan", "superseded by correction re-submission"),
		ub.Assign("updated_at", Now()),
	)
	ub.Where(
		ub.Equal("proposal_id", proposalID.String()),
		ub.Equal("jenis", string(track)),
		ub.Equal("status", string(models.MonitoringApproved)),
	)

	sql, args := ub.Build()

	_, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to supersede approved reports")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to supersede approved reports")
	}

	return nil
}

// CountApproved counts approved reports on a track
func (r *Repository) CountApproved(ctx context.Context, proposalID uuid.UUID, track models.MonitoringTrack) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "MonitoringRepository.CountApproved")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(monitoringTable)
	sb.Where(
		sb.Equal("proposal_id", proposalID.String()),
		sb.Equal("jenis", string(track)),
		sb.Equal("status", string(models.MonitoringApproved)),
	)

	sql, args := sb.Build()

	var count int
	err := r.db.GetContext(ctx, &count, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count approved reports")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count approved reports")
	}

	return count, nil
}
