package models

import (
	"time"

	"github.com/google/uuid"
)

// LuaranJenis classifies a research output
type LuaranJenis string

const (
	OutputJournal   LuaranJenis = "JURNAL"
	OutputBook      LuaranJenis = "BUKU"
	OutputIPR       LuaranJenis = "HAKI"
	OutputProduct   LuaranJenis = "PRODUK"
	OutputMassMedia LuaranJenis = "MEDIA_MASSA"
	OutputOther     LuaranJenis = "LAINNYA"
)

// LuaranStatus is the verification state of a research output
type LuaranStatus string

const (
	OutputPending  LuaranStatus = "PENDING"
	OutputVerified LuaranStatus = "DIVERIFIKASI"
	OutputRejected LuaranStatus = "DITOLAK"
)

// Luaran is a claimed research output of a running or completed proposal
type Luaran struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	ProposalID uuid.UUID    `db:"proposal_id" json:"proposal_id"`
	Jenis      LuaranJenis  `db:"jenis" json:"jenis"`
	Judul      string       `db:"judul" json:"judul"`
	URL        *string      `db:"url" json:"url,omitempty"`
	FileBukti  *string      `db:"file_bukti" json:"file_bukti,omitempty"`
	Status     LuaranStatus `db:"status" json:"status"`
	Catatan    *string      `db:"catatan" json:"catatan,omitempty"`
	VerifiedBy *uuid.UUID   `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt *time.Time   `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Luaran) TableName() string {
	return "luaran"
}
