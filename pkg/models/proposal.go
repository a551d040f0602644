// Package models defines the persisted entities of the grant workflow. Field
// values on the wire keep the institution's Indonesian vocabulary so existing
// clients and reports keep working.
package models

import (
	"time"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/google/uuid"
)

// ProposalStatus is the lifecycle state of a research proposal
type ProposalStatus string

const (
	StatusDraft     ProposalStatus = "DRAFT"
	StatusSubmitted ProposalStatus = "DIAJUKAN"
	StatusInReview  ProposalStatus = "DIREVIEW"
	StatusRevision  ProposalStatus = "REVISI"
	StatusAccepted  ProposalStatus = "DITERIMA"
	StatusRejected  ProposalStatus = "DITOLAK"
	StatusRunning   ProposalStatus = "BERJALAN"
	StatusCompleted ProposalStatus = "SELESAI"
)

// ClearanceStatus is the administrative clearance decision recorded on an
// accepted proposal before its results seminar can be scheduled
type ClearanceStatus string

const (
	ClearancePassed ClearanceStatus = "LOLOS"
	ClearanceFailed ClearanceStatus = "TIDAK_LOLOS"
)

// TeamMember is a co-investigator on a proposal
type TeamMember struct {
	Nama  string `json:"nama"`
	NIDN  string `json:"nidn,omitempty"`
	Peran string `json:"peran,omitempty"`
}

// Proposal represents a research grant proposal
type Proposal struct {
	ID               uuid.UUID                      `db:"id" json:"id"`
	PeriodeID        uuid.UUID                      `db:"periode_id" json:"periode_id"`
	SkemaID          uuid.UUID                      `db:"skema_id" json:"skema_id"`
	KetuaID          uuid.UUID                      `db:"ketua_id" json:"ketua_id"`
	Judul            string                         `db:"judul" json:"judul"`
	Abstrak          string                         `db:"abstrak" json:"abstrak"`
	FileProposal     *string                        `db:"file_proposal" json:"file_proposal,omitempty"`
	Anggota          database.JSONB[[]TeamMember]   `db:"anggota" json:"anggota"`
	Status           ProposalStatus                 `db:"status" json:"status"`
	Clearance        *ClearanceStatus               `db:"clearance" json:"clearance,omitempty"`
	ClearanceCatatan *string                        `db:"clearance_catatan" json:"clearance_catatan,omitempty"`
	ClearanceBy      *uuid.UUID                     `db:"clearance_by" json:"clearance_by,omitempty"`
	ClearanceAt      *time.Time                     `db:"clearance_at" json:"clearance_at,omitempty"`
	JadwalSeminar    *time.Time                     `db:"jadwal_seminar" json:"jadwal_seminar,omitempty"`
	KomentarReviewer *string                        `db:"komentar_reviewer" json:"komentar_reviewer,omitempty"`
	SubmittedAt      *time.Time                     `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt        time.Time                      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time                      `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Proposal) TableName() string {
	return "proposal"
}

// IsComplete reports whether the proposal carries everything submission needs
func (p *Proposal) IsComplete() bool {
	return p.Judul != "" && p.Abstrak != "" && p.FileProposal != nil && *p.FileProposal != ""
}

// ReviewStatus is the state of a single reviewer assignment
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "PENDING"
	ReviewCompleted ReviewStatus = "SELESAI"
)

// ProposalReviewer is a reviewer assignment on a proposal
type ProposalReviewer struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	ProposalID uuid.UUID    `db:"proposal_id" json:"proposal_id"`
	ReviewerID uuid.UUID    `db:"reviewer_id" json:"reviewer_id"`
	Status     ReviewStatus `db:"status" json:"status"`
	Nilai      *float64     `db:"nilai" json:"nilai,omitempty"`
	Komentar   *string      `db:"komentar" json:"komentar,omitempty"`
	AssignedAt time.Time    `db:"assigned_at" json:"assigned_at"`
	ReviewedAt *time.Time   `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// TableName returns the database table name
func (ProposalReviewer) TableName() string {
	return "proposal_reviewer"
}
