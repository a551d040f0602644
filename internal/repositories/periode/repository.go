// Package periode reads grant submission periods. Periods are managed by a
// separate admin tool, so this repository is read only.
package periode

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

const periodeTable = "periode"

// PeriodeRow represents the database row for a periode
type PeriodeRow struct {
	ID             sql.NullString `db:"id"`
	Nama           sql.NullString `db:"nama"`
	TahunAnggaran  sql.NullString `db:"tahun_anggaran"`
	TanggalMulai   sql.NullTime   `db:"tanggal_mulai"`
	TanggalSelesai sql.NullTime   `db:"tanggal_selesai"`
	Status         sql.NullString `db:"status"`
	CreatedAt      sql.NullTime   `db:"created_at"`
}

var periodeStruct = database.NewStruct(new(PeriodeRow))

// ToPeriode converts a database row to a domain model
func ToPeriode(row *PeriodeRow) *models.Periode {
	id, _ := uuid.Parse(row.ID.String)
	return &models.Periode{
		ID:             id,
		Nama:           row.Nama.String,
		TahunAnggaran:  row.TahunAnggaran.String,
		TanggalMulai:   row.TanggalMulai.Time,
		TanggalSelesai: row.TanggalSelesai.Time,
		Status:         models.PeriodeStatus(row.Status.String),
		CreatedAt:      row.CreatedAt.Time,
	}
}

// PeriodeRepository defines the interface for periode data access
type PeriodeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Periode, error)
	List(ctx context.Context) ([]*models.Periode, error)
}

// Repository implements PeriodeRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new periode repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a periode by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Periode, error) {
	ctx, span := tracing.StartSpan(ctx, "PeriodeRepository.GetByID")
	defer span.End()

	sb := periodeStruct.SelectFrom(periodeTable)
	sb.Where(sb.Equal("id", id.String()))

	sql, args := sb.Build()

	var row PeriodeRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "periode not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get periode")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get periode")
	}

	return ToPeriode(&row), nil
}

// List retrieves all periods, newest first
func (r *Repository) List(ctx context.Context) ([]*models.Periode, error) {
	ctx, span := tracing.StartSpan(ctx, "PeriodeRepository.List")
	defer span.End()

	sb := periodeStruct.SelectFrom(periodeTable)
	sb.OrderBy("tanggal_mulai").Desc()

	sql, args := sb.Build()

	var rows []PeriodeRow
	err := r.db.SelectContext(ctx, &rows, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list periods")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list periods")
	}

	periods := make([]*models.Periode, len(rows))
	for i, row := range rows {
		periods[i] = ToPeriode(&row)
	}
	return periods, nil
}
