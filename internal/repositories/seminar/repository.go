// Package seminar stores scheduled seminar sessions.
package seminar

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

const seminarTable = "seminar"

// SeminarRow represents the database row for a seminar
type SeminarRow struct {
	ID             sql.NullString `db:"id"`
	ProposalID     sql.NullString `db:"proposal_id"`
	Jenis          sql.NullString `db:"jenis"`
	TanggalSeminar sql.NullTime   `db:"tanggal_seminar"`
	Tempat         sql.NullString `db:"tempat"`
	Catatan        sql.NullString `db:"catatan"`
	Status         sql.NullString `db:"status"`
	CreatedAt      sql.NullTime   `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

var seminarStruct = database.NewStruct(new(SeminarRow))

// FromSeminar converts a domain model to a database row
func FromSeminar(s *models.Seminar) *SeminarRow {
	row := &SeminarRow{
		ID:             sql.NullString{String: s.ID.String(), Valid: s.ID != uuid.Nil},
		ProposalID:     sql.NullString{String: s.ProposalID.String(), Valid: s.ProposalID != uuid.Nil},
		Jenis:          sql.NullString{String: string(s.Jenis), Valid: s.Jenis != ""},
		TanggalSeminar: sql.NullTime{Time: s.TanggalSeminar, Valid: !s.TanggalSeminar.IsZero()},
		Tempat:         sql.NullString{String: s.Tempat, Valid: s.Tempat != ""},
		Status:         sql.NullString{String: string(s.Status), Valid: s.Status != ""},
		CreatedAt:      sql.NullTime{Time: s.CreatedAt, Valid: !s.CreatedAt.IsZero()},
		UpdatedAt:      sql.NullTime{Time: s.UpdatedAt, Valid: !s.UpdatedAt.IsZero()},
	}
	if s.Catatan != nil {
		row.Catatan = sql.NullString{String: *s.Catatan, Valid: true}
	}
	return row
}

// ToSeminar converts a database row to a domain model
func ToSeminar(row *SeminarRow) *models.Seminar {
	id, _ := uuid.Parse(row.ID.String)
	proposalID, _ := uuid.Parse(row.ProposalID.String)
	s := &models.Seminar{
		ID:             id,
		ProposalID:     proposalID,
		Jenis:          models.SeminarJenis(row.Jenis.String),
		TanggalSeminar: row.TanggalSeminar.Time,
		Tempat:         row.Tempat.String,
		Status:         models.SeminarStatus(row.Status.String),
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
	if row.Catatan.Valid {
		s.Catatan = &row.Catatan.String
	}
	return s
}

// SeminarRepository defines the interface for seminar data access
type SeminarRepository interface {
	Create(ctx context.Context, seminar *models.Seminar) (*models.Seminar, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Seminar, error)
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.Seminar, error)
	Update(ctx context.Context, seminar *models.Seminar) (*models.Seminar, error)
}

// Repository implements SeminarRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new seminar repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create schedules a seminar
func (r *Repository) Create(ctx context.Context, seminar *models.Seminar) (*models.Seminar, error) {
	ctx, span := tracing.StartSpan(ctx, "SeminarRepository.Create")
	defer span.End()

	if seminar.ID == uuid.Nil {
		seminar.ID = uuid.New()
	}

	now := time.Now().UTC()
	seminar.CreatedAt = now
	seminar.UpdatedAt = now

	row := FromSeminar(seminar)
	ib := seminarStruct.InsertInto(seminarTable, row)
	sql, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":          seminar.ID,
		"proposal_id": seminar.ProposalID,
		"jenis":       seminar.Jenis,
	}).Debug("Creating seminar")

	_, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create seminar")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create seminar")
	}

	return seminar, nil
}

// GetByID retrieves a seminar by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Seminar, error) {
	ctx, span := tracing.StartSpan(ctx, "SeminarRepository.GetByID")
	defer span.End()

	sb := seminarStruct.SelectFrom(seminarTable)
	sb.Where(sb.Equal("id", id.String()))

	sql, args := sb.Build()

	var row SeminarRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "seminar not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get seminar")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get seminar")
	}

	return ToSeminar(&row), nil
}

// ListByProposal retrieves the seminars scheduled for a proposal
func (r *Repository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*models.Seminar, error) {
	ctx, span := tracing.StartSpan(ctx, "SeminarRepository.ListByProposal")
	defer span.End()

	sb := seminarStruct.SelectFrom(seminarTable)
	sb.Where(sb.Equal("proposal_id", proposalID.String()))
	sb.OrderBy("tanggal_seminar").Desc()

	sql, args := sb.Build()

	var rows []SeminarRow
	err := r.db.SelectContext(ctx, &rows, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list seminars")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list seminars")
	}

	seminars := make([]*models.Seminar, len(rows))
	for i, row := range rows {
		seminars[i] = ToSeminar(&row)
	}
	return seminars, nil
}

// Update updates a seminar's schedule or status
func (r *Repository) Update(ctx context.Context, seminar *models.Seminar) (*models.Seminar, error) {
	ctx, span := tracing.StartSpan(ctx, "SeminarRepository.Update")
	defer span.End()

	seminar.UpdatedAt = time.Now().UTC()

	ub := seminarStruct.Update(seminarTable, FromSeminar(seminar))
	ub.Where(ub.Equal("id", seminar.ID.String()))

	sql, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id": seminar.ID,
	}).Debug("Updating seminar")

	result, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update seminar")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update seminar")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "seminar not found")
	}

	return seminar, nil
}
