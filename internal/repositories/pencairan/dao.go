package pencairan

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
)

const pencairanTable = "pencairan"

// PencairanRow represents the database row for a disbursement entry
type PencairanRow struct {
	ID          sql.NullString `db:"id"`
	ProposalID  sql.NullString `db:"proposal_id"`
	Termin      sql.NullString `db:"termin"`
	Jumlah      sql.NullInt64  `db:"jumlah"`
	Status      sql.NullString `db:"status"`
	Catatan     sql.NullString `db:"catatan"`
	FileBukti   sql.NullString `db:"file_bukti"`
	RequestedBy sql.NullString `db:"requested_by"`
	VerifiedBy  sql.NullString `db:"verified_by"`
	TanggalCair sql.NullTime   `db:"tanggal_cair"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

var pencairanStruct = database.NewStruct(new(PencairanRow))

// FromPencairan converts a domain model to a database row
func FromPencairan(p *models.Pencairan) *PencairanRow {
	row := &PencairanRow{
		ID:          sql.NullString{String: p.ID.String(), Valid: p.ID != uuid.Nil},
		ProposalID:  sql.NullString{String: p.ProposalID.String(), Valid: p.ProposalID != uuid.Nil},
		Termin:      sql.NullString{String: string(p.Termin), Valid: p.Termin != ""},
		Jumlah:      sql.NullInt64{Int64: p.Jumlah, Valid: true},
		Status:      sql.NullString{String: string(p.Status), Valid: p.Status != ""},
		RequestedBy: sql.NullString{String: p.RequestedBy.String(), Valid: p.RequestedBy != uuid.Nil},
		CreatedAt:   sql.NullTime{Time: p.CreatedAt, Valid: !p.CreatedAt.IsZero()},
		UpdatedAt:   sql.NullTime{Time: p.UpdatedAt, Valid: !p.UpdatedAt.IsZero()},
	}
	if p.Catatan != nil {
		row.Catatan = sql.NullString{String: *p.Catatan, Valid: true}
	}
	if p.FileBukti != nil {
		row.FileBukti = sql.NullString{String: *p.FileBukti, Valid: true}
	}
	if p.VerifiedBy != nil {
		row.VerifiedBy = sql.NullString{String: p.VerifiedBy.String(), Valid: true}
	}
	if p.TanggalCair != nil {
		row.TanggalCair = sql.NullTime{Time: *p.TanggalCair, Valid: true}
	}
	return row
}

// ToPencairan converts a database row to a domain model
func ToPencairan(row *PencairanRow) *models.Pencairan {
	id, _ := uuid.Parse(row.ID.String)
	proposalID, _ := uuid.Parse(row.ProposalID.String)
	requestedBy, _ := uuid.Parse(row.RequestedBy.String)
	p := &models.Pencairan{
		ID:          id,
		ProposalID:  proposalID,
		Termin:      models.Tranche(row.Termin.String),
		Jumlah:      row.Jumlah.Int64,
		Status:      models.PencairanStatus(row.Status.String),
		RequestedBy: requestedBy,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
	if row.Catatan.Valid {
		p.Catatan = &row.Catatan.String
	}
	if row.FileBukti.Valid {
		p.FileBukti = &row.FileBukti.String
	}
	if row.VerifiedBy.Valid {
		if verifier, err := uuid.Parse(row.VerifiedBy.String); err == nil {
			p.VerifiedBy = &verifier
		}
	}
	if row.TanggalCair.Valid {
		p.TanggalCair = &row.TanggalCair.Time
	}
	return p
}

// ToPencairans converts a slice of database rows to domain models
func ToPencairans(rows []PencairanRow) []*models.Pencairan {
	entries := make([]*models.Pencairan, len(rows))
	for i, row := range rows {
		entries[i] = ToPencairan(&row)
	}
	return entries
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
