package proposal

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

// AssignReviewers inserts reviewer assignments for a proposal. Re-assigning
// an already assigned reviewer is a no-op.
func (r *Repository) AssignReviewers(ctx context.Context, proposalID uuid.UUID, reviewerIDs []uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.AssignReviewers")
	defer span.End()

	now := Now()
	rows := make([]any, 0, len(reviewerIDs))
	for _, reviewerID := range reviewerIDs {
		rows = append(rows, FromReviewer(&models.ProposalReviewer{
			ID:         uuid.New(),
			ProposalID: proposalID,
			ReviewerID: reviewerID,
			Status:     models.ReviewPending,
			AssignedAt: now,
		}))
	}

	ib := reviewerStruct.InsertInto(reviewerTable, rows...)
	ib.OnConflictDoNothing()
	sql, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"proposal_id": proposalID,
		"reviewers":   len(reviewerIDs),
	}).Debug("Assigning reviewers")

	_, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to assign reviewers")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to assign reviewers")
	}

	return nil
}

// ListReviewers retrieves the reviewer assignments for a proposal
func (r *Repository) ListReviewers(ctx context.Context, proposalID uuid.UUID) ([]*models.ProposalReviewer, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.ListReviewers")
	defer span.End()

	sb := reviewerStruct.SelectFrom(reviewerTable)
	sb.Where(sb.Equal("proposal_id", proposalID.String()))
	sb.OrderBy("assigned_at")

	sql, args := sb.Build()

	var rows []ReviewerRow
	err := r.db.SelectContext(ctx, &rows, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list reviewers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list reviewers")
	}

	return ToReviewers(rows), nil
}

// CompleteReview records a reviewer's score and comments
func (r *Repository) CompleteReview(ctx context.Context, proposalID, reviewerID uuid.UUID, nilai float64, komentar string) error {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.CompleteReview")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(reviewerTable)
	ub.Set(
		ub.Assign("status", string(models.ReviewCompleted)),
		ub.Assign("nilai", nilai),
		ub.Assign("komentar", komentar),
		ub.Assign("reviewed_at", Now()),
	)
	ub.Where(
		ub.Equal("proposal_id", proposalID.String()),
		ub.Equal("reviewer_id", reviewerID.String()),
	)

	sql, args := ub.Build()

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to complete review")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete review")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "reviewer assignment not found")
	}

	return nil
}

// CountReviewers counts the reviewer assignments on a proposal
func (r *Repository) CountReviewers(ctx context.Context, proposalID uuid.UUID) (int, error) {
	return r.countReviewers(ctx, proposalID, nil)
}

// CountPendingReviews counts assignments that have not been completed yet
func (r *Repository) CountPendingReviews(ctx context.Context, proposalID uuid.UUID) (int, error) {
	status := models.ReviewPending
	return r.countReviewers(ctx, proposalID, &status)
}

func (r *Repository) countReviewers(ctx context.Context, proposalID uuid.UUID, status *models.ReviewStatus) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "ProposalRepository.countReviewers")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(reviewerTable)
	sb.Where(sb.Equal("proposal_id", proposalID.String()))
	if status != nil {
		sb.Where(sb.Equal("status", string(*status)))
	}

	sql, args := sb.Build()

	var count int
	err := r.db.GetContext(ctx, &count, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count reviewers")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count reviewers")
	}

	return count, nil
}
