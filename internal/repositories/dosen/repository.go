// Package dosen reads faculty members provisioned by the campus identity
// system.
package dosen

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

const dosenTable = "dosen"

// DosenRow represents the database row for a dosen
type DosenRow struct {
	ID        sql.NullString `db:"id"`
	NIDN      sql.NullString `db:"nidn"`
	Nama      sql.NullString `db:"nama"`
	Email     sql.NullString `db:"email"`
	Fakultas  sql.NullString `db:"fakultas"`
	Prodi     sql.NullString `db:"prodi"`
	CreatedAt sql.NullTime   `db:"created_at"`
}

var dosenStruct = database.NewStruct(new(DosenRow))

// ToDosen converts a database row to a domain model
func ToDosen(row *DosenRow) *models.Dosen {
	id, _ := uuid.Parse(row.ID.String)
	return &models.Dosen{
		ID:        id,
		NIDN:      row.NIDN.String,
		Nama:      row.Nama.String,
		Email:     row.Email.String,
		Fakultas:  row.Fakultas.String,
		Prodi:     row.Prodi.String,
		CreatedAt: row.CreatedAt.Time,
	}
}

// DosenRepository defines the interface for dosen data access
type DosenRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dosen, error)
}

// Repository implements DosenRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new dosen repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a dosen by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dosen, error) {
	ctx, span := tracing.StartSpan(ctx, "DosenRepository.GetByID")
	defer span.End()

	sb := dosenStruct.SelectFrom(dosenTable)
	sb.Where(sb.Equal("id", id.String()))

	sql, args := sb.Build()

	var row DosenRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "dosen not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get dosen")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get dosen")
	}

	return ToDosen(&row), nil
}
