package models

import (
	"time"

	"github.com/google/uuid"
)

// MonitoringTrack distinguishes the progress report from the final report
type MonitoringTrack string

const (
	TrackProgress MonitoringTrack = "KEMAJUAN"
	TrackFinal    MonitoringTrack = "AKHIR"
)

// MonitoringStatus is the verification state of a submitted report
type MonitoringStatus string

const (
	MonitoringPending  MonitoringStatus = "PENDING"
	MonitoringApproved MonitoringStatus = "APPROVED"
	MonitoringRejected MonitoringStatus = "REJECTED"
)

// MonitoringReport is one uploaded progress or final report. Rows are append
// only; a re-submission on the same track creates a new row and supersedes
// the old one.
type MonitoringReport struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	ProposalID  uuid.UUID        `db:"proposal_id" json:"proposal_id"`
	Jenis       MonitoringTrack  `db:"jenis" json:"jenis"`
	FileLaporan string           `db:"file_laporan" json:"file_laporan"`
	Status      MonitoringStatus `db:"status" json:"status"`
	Catatan     *string          `db:"catatan" json:"catatan,omitempty"`
	VerifiedBy  *uuid.UUID       `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt  *time.Time       `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (MonitoringReport) TableName() string {
	return "monitoring"
}
