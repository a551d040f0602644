package luaran

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
)

const luaranTable = "luaran"

// LuaranRow represents the database row for a research output
type LuaranRow struct {
	ID         sql.NullString `db:"id"`
	ProposalID sql.NullString `db:"proposal_id"`
	Jenis      sql.NullString `db:"jenis"`
	Judul      sql.NullString `db:"judul"`
	URL        sql.NullString `db:"url"`
	FileBukti  sql.NullString `db:"file_bukti"`
	Status     sql.NullString `db:"status"`
	Catatan    sql.NullString `db:"catatan"`
	VerifiedBy sql.NullString `db:"verified_by"`
	VerifiedAt sql.NullTime   `db:"verified_at"`
	CreatedAt  sql.NullTime   `db:"created_at"`
	UpdatedAt  sql.NullTime   `db:"updated_at"`
}

var luaranStruct = database.NewStruct(new(LuaranRow))

// FromLuaran converts a domain model to a database row
func FromLuaran(l *models.Luaran) *LuaranRow {
	row := &LuaranRow{
		ID:         sql.NullString{String: l.ID.String(), Valid: l.ID != uuid.Nil},
		ProposalID: sql.NullString{String: l.ProposalID.String(), Valid: l.ProposalID != uuid.Nil},
		Jenis:      sql.NullString{String: string(l.Jenis), Valid: l.Jenis != ""},
		Judul:      sql.NullString{String: l.Judul, Valid: l.Judul != ""},
		Status:     sql.NullString{String: string(l.Status), Valid: l.Status != ""},
		CreatedAt:  sql.NullTime{Time: l.CreatedAt, Valid: !l.CreatedAt.IsZero()},
		UpdatedAt:  sql.NullTime{Time: l.UpdatedAt, Valid: !l.UpdatedAt.IsZero()},
	}
	if l.URL != nil {
		row.URL = sql.NullString{String: *l.URL, Valid: true}
	}
	if l.FileBukti != nil {
		row.FileBukti = sql.NullString{String: *l.FileBukti, Valid: true}
	}
	if l.Catatan != nil {
		row.Catatan = sql.NullString{String: *l.Catatan, Valid: true}
	}
	if l.VerifiedBy != nil {
		row.VerifiedBy = sql.NullString{String: l.VerifiedBy.String(), Valid: true}
	}
	if l.VerifiedAt != nil {
		row.VerifiedAt = sql.NullTime{Time: *l.VerifiedAt, Valid: true}
	}
	return row
}

// ToLuaran converts a database row to a domain model
func ToLuaran(row *LuaranRow) *models.Luaran {
	id, _ := uuid.Parse(row.ID.String)
	proposalID, _ := uuid.Parse(row.ProposalID.String)
	l := &models.Luaran{
		ID:         id,
		ProposalID: proposalID,
		Jenis:      models.LuaranJenis(row.Jenis.String),
		Judul:      row.Judul.String,
		Status:     models.LuaranStatus(row.Status.String),
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
	if row.URL.Valid {
		l.URL = &row.URL.String
	}
	if row.FileBukti.Valid {
		l.FileBukti = &row.FileBukti.String
	}
	if row.Catatan.Valid {
		l.Catatan = &row.Catatan.String
	}
	if row.VerifiedBy.Valid {
		if verifier, err := uuid.Parse(row.VerifiedBy.String); err == nil {
			l.VerifiedBy = &verifier
		}
	}
	if row.VerifiedAt.Valid {
		l.VerifiedAt = &row.VerifiedAt.Time
	}
	return l
}

// ToLuarans converts a slice of database rows to domain models
func ToLuarans(rows []LuaranRow) []*models.Luaran {
	outputs := make([]*models.Luaran, len(rows))
	for i, row := range rows {
		outputs[i] = ToLuaran(&row)
	}
	return outputs
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
