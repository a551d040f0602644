package models

import (
	"time"

	"github.com/google/uuid"
)

// Tranche identifies one of the three disbursement tranches
type Tranche string

const (
	Tranche1 Tranche = "TERMIN_1"
	Tranche2 Tranche = "TERMIN_2"
	Tranche3 Tranche = "TERMIN_3"
)

// TranchePercent is the share of the scheme's funding each tranche carries
var TranchePercent = map[Tranche]int64{
	Tranche1: 50,
	Tranche2: 25,
	Tranche3: 25,
}

// Prior returns the tranche that must be released before this one, or ""
// for the first tranche.
func (t Tranche) Prior() Tranche {
	switch t {
	case Tranche2:
		return Tranche1
	case Tranche3:
		return Tranche2
	}
	return ""
}

// Valid reports whether t names a known tranche
func (t Tranche) Valid() bool {
	_, ok := TranchePercent[t]
	return ok
}

// PencairanStatus is the state of a disbursement request
type PencairanStatus string

const (
	DisbursementPending  PencairanStatus = "PENDING"
	DisbursementReleased PencairanStatus = "DICAIRKAN"
	DisbursementRejected PencairanStatus = "DITOLAK"
)

// Pencairan is one disbursement ledger entry. The database enforces one row
// per proposal and tranche.
type Pencairan struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	ProposalID  uuid.UUID       `db:"proposal_id" json:"proposal_id"`
	Termin      Tranche         `db:"termin" json:"termin"`
	Jumlah      int64           `db:"jumlah" json:"jumlah"`
	Status      PencairanStatus `db:"status" json:"status"`
	Catatan     *string         `db:"catatan" json:"catatan,omitempty"`
	FileBukti   *string         `db:"file_bukti" json:"file_bukti,omitempty"`
	RequestedBy uuid.UUID       `db:"requested_by" json:"requested_by"`
	VerifiedBy  *uuid.UUID      `db:"verified_by" json:"verified_by,omitempty"`
	TanggalCair *time.Time      `db:"tanggal_cair" json:"tanggal_cair,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Pencairan) TableName() string {
	return "pencairan"
}

// TrancheAmount computes the rupiah amount of a tranche from the scheme's
// maximum funding.
func TrancheAmount(dana int64, t Tranche) int64 {
	return dana * TranchePercent[t] / 100
}
