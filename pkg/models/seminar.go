package models

import (
	"time"

	"github.com/google/uuid"
)

// SeminarJenis classifies a seminar
type SeminarJenis string

const (
	SeminarProposal SeminarJenis = "PROPOSAL"
	SeminarInternal SeminarJenis = "INTERNAL"
	SeminarPublic   SeminarJenis = "PUBLIK"
)

// SeminarStatus is the state of a scheduled seminar
type SeminarStatus string

const (
	SeminarScheduled SeminarStatus = "SCHEDULED"
	SeminarCompleted SeminarStatus = "SELESAI"
	SeminarCancelled SeminarStatus = "DIBATALKAN"
)

// Seminar is a scheduled seminar session for a proposal
type Seminar struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	ProposalID     uuid.UUID     `db:"proposal_id" json:"proposal_id"`
	Jenis          SeminarJenis  `db:"jenis" json:"jenis"`
	TanggalSeminar time.Time     `db:"tanggal_seminar" json:"tanggal_seminar"`
	Tempat         string        `db:"tempat" json:"tempat"`
	Catatan        *string       `db:"catatan" json:"catatan,omitempty"`
	Status         SeminarStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Seminar) TableName() string {
	return "seminar"
}
