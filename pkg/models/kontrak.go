package models

import (
	"time"

	"github.com/google/uuid"
)

// KontrakStatus is the state of a grant contract
type KontrakStatus string

const (
	ContractDraft     KontrakStatus = "DRAFT"
	ContractSigned    KontrakStatus = "SIGNED"
	ContractActive    KontrakStatus = "ACTIVE"
	ContractCompleted KontrakStatus = "SELESAI"
)

// Kontrak is the grant contract issued for an accepted proposal. Each
// proposal has at most one.
type Kontrak struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	ProposalID   uuid.UUID     `db:"proposal_id" json:"proposal_id"`
	NomorKontrak string        `db:"nomor_kontrak" json:"nomor_kontrak"`
	Status       KontrakStatus `db:"status" json:"status"`
	FileKontrak  *string       `db:"file_kontrak" json:"file_kontrak,omitempty"`
	FileSK       *string       `db:"file_sk" json:"file_sk,omitempty"`
	TanggalTTD   *time.Time    `db:"tanggal_ttd" json:"tanggal_ttd,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Kontrak) TableName() string {
	return "kontrak"
}

// IsSigned reports whether the contract has been signed. Signing is a one way
// step, so the later ACTIVE and SELESAI states count too.
func (k *Kontrak) IsSigned() bool {
	switch k.Status {
	case ContractSigned, ContractActive, ContractCompleted:
		return true
	}
	return false
}
