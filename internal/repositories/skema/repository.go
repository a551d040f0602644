// Package skema reads funding schemes. Schemes are seeded administratively,
// so this repository is read only.
package skema

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

const skemaTable = "skema"

// SkemaRow represents the database row for a skema
type SkemaRow struct {
	ID           sql.NullString `db:"id"`
	Nama         sql.NullString `db:"nama"`
	Tipe         sql.NullString `db:"tipe"`
	DanaMaksimal sql.NullInt64  `db:"dana_maksimal"`
	Deskripsi    sql.NullString `db:"deskripsi"`
	CreatedAt    sql.NullTime   `db:"created_at"`
}

var skemaStruct = database.NewStruct(new(SkemaRow))

// ToSkema converts a database row to a domain model
func ToSkema(row *SkemaRow) *models.Skema {
	id, _ := uuid.Parse(row.ID.String)
	s := &models.Skema{
		ID:           id,
		Nama:         row.Nama.String,
		Tipe:         models.SkemaTipe(row.Tipe.String),
		DanaMaksimal: row.DanaMaksimal.Int64,
		CreatedAt:    row.CreatedAt.Time,
	}
	if row.Deskripsi.Valid {
		s.Deskripsi = &row.Deskripsi.String
	}
	return s
}

// SkemaRepository defines the interface for skema data access
type SkemaRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skema, error)
	List(ctx context.Context) ([]*models.Skema, error)
}

// Repository implements SkemaRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new skema repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a skema by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Skema, error) {
	ctx, span := tracing.StartSpan(ctx, "SkemaRepository.GetByID")
	defer span.End()

	sb := skemaStruct.SelectFrom(skemaTable)
	sb.Where(sb.Equal("id", id.String()))

	sql, args := sb.Build()

	var row SkemaRow
	err := r.db.GetContext(ctx, &row, sql, args...)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "skema not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get skema")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get skema")
	}

	return ToSkema(&row), nil
}

// List retrieves all schemes
func (r *Repository) List(ctx context.Context) ([]*models.Skema, error) {
	ctx, span := tracing.StartSpan(ctx, "SkemaRepository.List")
	defer span.End()

	sb := skemaStruct.SelectFrom(skemaTable)
	sb.OrderBy("nama")

	sql, args := sb.Build()

	var rows []SkemaRow
	err := r.db.SelectContext(ctx, &rows, sql, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list schemes")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list schemes")
	}

	schemes := make([]*models.Skema, len(rows))
	for i, row := range rows {
		schemes[i] = ToSkema(&row)
	}
	return schemes, nil
}
