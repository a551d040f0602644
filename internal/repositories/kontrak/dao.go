package kontrak

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
)

const kontrakTable = "kontrak"

// KontrakRow represents the database row for a kontrak
type KontrakRow struct {
	ID           sql.NullString `db:"id"`
	ProposalID   sql.NullString `db:"proposal_id"`
	NomorKontrak sql.NullString `db:"nomor_kontrak"`
	Status       sql.NullString `db:"status"`
	FileKontrak  sql.NullString `db:"file_kontrak"`
	FileSK       sql.NullString `db:"file_sk"`
	TanggalTTD   sql.NullTime   `db:"tanggal_ttd"`
	CreatedAt    sql.NullTime   `db:"created_at"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
}

var kontrakStruct = database.NewStruct(new(KontrakRow))

// FromKontrak converts a domain model to a database row
func FromKontrak(k *models.Kontrak) *KontrakRow {
	row := &KontrakRow{
		ID:           sql.NullString{String: k.ID.String(), Valid: k.ID != uuid.Nil},
		ProposalID:   sql.NullString{String: k.ProposalID.String(), Valid: k.ProposalID != uuid.Nil},
		NomorKontrak: sql.NullString{String: k.NomorKontrak, Valid: k.NomorKontrak != ""},
		Status:       sql.NullString{String: string(k.Status), Valid: k.Status != ""},
		CreatedAt:    sql.NullTime{Time: k.CreatedAt, Valid: !k.CreatedAt.IsZero()},
		UpdatedAt:    sql.NullTime{Time: k.UpdatedAt, Valid: !k.UpdatedAt.IsZero()},
	}
	if k.FileKontrak != nil {
		row.FileKontrak = sql.NullString{String: *k.FileKontrak, Valid: true}
	}
	if k.FileSK != nil {
		row.FileSK = sql.NullString{String: *k.FileSK, Valid: true}
	}
	if k.TanggalTTD != nil {
		row.TanggalTTD = sql.NullTime{Time: *k.TanggalTTD, Valid: true}
	}
	return row
}

// ToKontrak converts a database row to a domain model
func ToKontrak(row *KontrakRow) *models.Kontrak {
	id, _ := uuid.Parse(row.ID.String)
	proposalID, _ := uuid.Parse(row.ProposalID.String)
	k := &models.Kontrak{
		ID:           id,
		ProposalID:   proposalID,
		NomorKontrak: row.NomorKontrak.String,
		Status:       models.KontrakStatus(row.Status.String),
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
	if row.FileKontrak.Valid {
		k.FileKontrak = &row.FileKontrak.String
	}
	if row.FileSK.Valid {
		k.FileSK = &row.FileSK.String
	}
	if row.TanggalTTD.Valid {
		k.TanggalTTD = &row.TanggalTTD.Time
	}
	return k
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
