package monitoring

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
)

const monitoringTable = "monitoring"

// ReportRow represents the database row for a monitoring report
type ReportRow struct {
	ID          sql.NullString `db:"id"`
	ProposalID  sql.NullString `db:"proposal_id"`
	Jenis       sql.NullString `db:"jenis"`
	FileLaporan sql.NullString `db:"file_laporan"`
	Status      sql.NullString `db:"status"`
	Catatan     sql.NullString `db:"catatan"`
	VerifiedBy  sql.NullString `db:"verified_by"`
	VerifiedAt  sql.NullTime   `db:"verified_at"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

var reportStruct = database.NewStruct(new(ReportRow))

// FromReport converts a domain model to a database row
func FromReport(m *models.MonitoringReport) *ReportRow {
	row := &ReportRow{
		ID:          sql.NullString{String: m.ID.String(), Valid: m.ID != uuid.Nil},
		ProposalID:  sql.NullString{String: m.ProposalID.String(), Valid: m.ProposalID != uuid.Nil},
		Jenis:       sql.NullString{String: string(m.Jenis), Valid: m.Jenis != ""},
		FileLaporan: sql.NullString{String: m.FileLaporan, Valid: m.FileLaporan != ""},
		Status:      sql.NullString{String: string(m.Status), Valid: m.Status != ""},
		CreatedAt:   sql.NullTime{Time: m.CreatedAt, Valid: !m.CreatedAt.IsZero()},
		UpdatedAt:   sql.NullTime{Time: m.UpdatedAt, Valid: !m.UpdatedAt.IsZero()},
	}
	if m.Catatan != nil {
		row.Catatan = sql.NullString{String: *m.Catatan, Valid: true}
	}
	if m.VerifiedBy != nil {
		row.VerifiedBy = sql.NullString{String: m.VerifiedBy.String(), Valid: true}
	}
	if m.VerifiedAt != nil {
		row.VerifiedAt = sql.NullTime{Time: *m.VerifiedAt, Valid: true}
	}
	return row
}

// ToReport converts a database row to a domain model
func ToReport(row *ReportRow) *models.MonitoringReport {
	id, _ := uuid.Parse(row.ID.String)
	proposalID, _ := uuid.Parse(row.ProposalID.String)
	m := &models.MonitoringReport{
		ID:          id,
		ProposalID:  proposalID,
		Jenis:       models.MonitoringTrack(row.Jenis.String),
		FileLaporan: row.FileLaporan.String,
		Status:      models.MonitoringStatus(row.Status.String),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
	if row.Catatan.Valid {
		m.Catatan = &row.Catatan.String
	}
	if row.VerifiedBy.Valid {
		if verifier, err := uuid.Parse(row.VerifiedBy.String); err == nil {
			m.VerifiedBy = &verifier
		}
	}
	if row.VerifiedAt.Valid {
		m.VerifiedAt = &row.VerifiedAt.Time
	}
	return m
}

// ToReports converts a slice of database rows to domain models
func ToReports(rows []ReportRow) []*models.MonitoringReport {
	reports := make([]*models.MonitoringReport, len(rows))
	for i, row := range rows {
		reports[i] = ToReport(&row)
	}
	return reports
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
