package proposal

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
)

const (
	proposalTable = "proposal"
	reviewerTable = "proposal_reviewer"
)

// ProposalRow represents the database row for a proposal
type ProposalRow struct {
	ID               sql.NullString                 `db:"id"`
	PeriodeID        sql.NullString                 `db:"periode_id"`
	SkemaID          sql.NullString                 `db:"skema_id"`
	KetuaID          sql.NullString                 `db:"ketua_id"`
	Judul            sql.NullString                 `db:"judul"`
	Abstrak          sql.NullString                 `db:"abstrak"`
	FileProposal     sql.NullString                 `db:"file_proposal"`
	Anggota          database.JSONB[[]models.TeamMember] `db:"anggota"`
	Status           sql.NullString                 `db:"status"`
	Clearance        sql.NullString                 `db:"clearance"`
	ClearanceCatatan sql.NullString                 `db:"clearance_catatan"`
	ClearanceBy      sql.NullString                 `db:"clearance_by"`
	ClearanceAt      sql.NullTime                   `db:"clearance_at"`
	JadwalSeminar    sql.NullTime                   `db:"jadwal_seminar"`
	KomentarReviewer sql.NullString                 `db:"komentar_reviewer"`
	SubmittedAt      sql.NullTime                   `db:"submitted_at"`
	CreatedAt        sql.NullTime                   `db:"created_at"`
	UpdatedAt        sql.NullTime                   `db:"updated_at"`
}

var proposalStruct = database.NewStruct(new(ProposalRow))

// FromProposal converts a domain model to a database row
func FromProposal(p *models.Proposal) *ProposalRow {
	row := &ProposalRow{
		ID:          sql.NullString{String: p.ID.String(), Valid: p.ID != uuid.Nil},
		PeriodeID:   sql.NullString{String: p.PeriodeID.String(), Valid: p.PeriodeID != uuid.Nil},
		SkemaID:     sql.NullString{String: p.SkemaID.String(), Valid: p.SkemaID != uuid.Nil},
		KetuaID:     sql.NullString{String: p.KetuaID.String(), Valid: p.KetuaID != uuid.Nil},
		Judul:       sql.NullString{String: p.Judul, Valid: p.Judul != ""},
		Abstrak:     sql.NullString{String: p.Abstrak, Valid: p.Abstrak != ""},
		Anggota:     database.JSONB[[]models.TeamMember]{Data: p.Anggota.Data},
		Status:      sql.NullString{String: string(p.Status), Valid: p.Status != ""},
		SubmittedAt: sql.NullTime{Time: timeOrZero(p.SubmittedAt), Valid: p.SubmittedAt != nil},
		CreatedAt:   sql.NullTime{Time: p.CreatedAt, Valid: !p.CreatedAt.IsZero()},
		UpdatedAt:   sql.NullTime{Time: p.UpdatedAt, Valid: !p.UpdatedAt.IsZero()},
	}
	if p.FileProposal != nil {
		row.FileProposal = sql.NullString{String: *p.FileProposal, Valid: true}
	}
	if p.Clearance != nil {
		row.Clearance = sql.NullString{String: string(*p.Clearance), Valid: true}
	}
	if p.ClearanceCatatan != nil {
		row.ClearanceCatatan = sql.NullString{String: *p.ClearanceCatatan, Valid: true}
	}
	if p.ClearanceBy != nil {
		row.ClearanceBy = sql.NullString{String: p.ClearanceBy.String(), Valid: true}
	}
	if p.ClearanceAt != nil {
		row.ClearanceAt = sql.NullTime{Time: *p.ClearanceAt, Valid: true}
	}
	if p.JadwalSeminar != nil {
		row.JadwalSeminar = sql.NullTime{Time: *p.JadwalSeminar, Valid: true}
	}
	if p.KomentarReviewer != nil {
		row.KomentarReviewer = sql.NullString{String: *p.KomentarReviewer, Valid: true}
	}
	return row
}

// ToProposal converts a database row to a domain model
func ToProposal(row *ProposalRow) *models.Proposal {
	p := &models.Proposal{
		ID:        parseUUID(row.ID),
		PeriodeID: parseUUID(row.PeriodeID),
		SkemaID:   parseUUID(row.SkemaID),
		KetuaID:   parseUUID(row.KetuaID),
		Judul:     row.Judul.String,
		Abstrak:   row.Abstrak.String,
		Anggota:   database.JSONB[[]models.TeamMember]{Data: row.Anggota.Data},
		Status:    models.ProposalStatus(row.Status.String),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	if row.FileProposal.Valid {
		p.FileProposal = &row.FileProposal.String
	}
	if row.Clearance.Valid {
		clearance := models.ClearanceStatus(row.Clearance.String)
		p.Clearance = &clearance
	}
	if row.ClearanceCatatan.Valid {
		p.ClearanceCatatan = &row.ClearanceCatatan.String
	}
	if row.ClearanceBy.Valid {
		by := parseUUID(row.ClearanceBy)
		p.ClearanceBy = &by
	}
	if row.ClearanceAt.Valid {
		p.ClearanceAt = &row.ClearanceAt.Time
	}
	if row.JadwalSeminar.Valid {
		p.JadwalSeminar = &row.JadwalSeminar.Time
	}
	if row.KomentarReviewer.Valid {
		p.KomentarReviewer = &row.KomentarReviewer.String
	}
	if row.SubmittedAt.Valid {
		p.SubmittedAt = &row.SubmittedAt.Time
	}
	return p
}

// ToProposals converts a slice of database rows to domain models
func ToProposals(rows []ProposalRow) []*models.Proposal {
	proposals := make([]*models.Proposal, len(rows))
	for i, row := range rows {
		proposals[i] = ToProposal(&row)
	}
	return proposals
}

// ReviewerRow represents the database row for a reviewer assignment
type ReviewerRow struct {
	ID         sql.NullString  `db:"id"`
	ProposalID sql.NullString  `db:"proposal_id"`
	ReviewerID sql.NullString  `db:"reviewer_id"`
	Status     sql.NullString  `db:"status"`
	Nilai      sql.NullFloat64 `db:"nilai"`
	Komentar   sql.NullString  `db:"komentar"`
	AssignedAt sql.NullTime    `db:"assigned_at"`
	ReviewedAt sql.NullTime    `db:"reviewed_at"`
}

var reviewerStruct = database.NewStruct(new(ReviewerRow))

// FromReviewer converts a domain model to a database row
func FromReviewer(a *models.ProposalReviewer) *ReviewerRow {
	row := &ReviewerRow{
		ID:         sql.NullString{String: a.ID.String(), Valid: a.ID != uuid.Nil},
		ProposalID: sql.NullString{String: a.ProposalID.String(), Valid: a.ProposalID != uuid.Nil},
		ReviewerID: sql.NullString{String: a.ReviewerID.String(), Valid: a.ReviewerID != uuid.Nil},
		Status:     sql.NullString{String: string(a.Status), Valid: a.Status != ""},
		AssignedAt: sql.NullTime{Time: a.AssignedAt, Valid: !a.AssignedAt.IsZero()},
	}
	if a.Nilai != nil {
		row.Nilai = sql.NullFloat64{Float64: *a.Nilai, Valid: true}
	}
	if a.Komentar != nil {
		row.Komentar = sql.NullString{String: *a.Komentar, Valid: true}
	}
	if a.ReviewedAt != nil {
		row.ReviewedAt = sql.NullTime{Time: *a.ReviewedAt, Valid: true}
	}
	return row
}

// ToReviewer converts a database row to a domain model
func ToReviewer(row *ReviewerRow) *models.ProposalReviewer {
	a := &models.ProposalReviewer{
		ID:         parseUUID(row.ID),
		ProposalID: parseUUID(row.ProposalID),
		ReviewerID: parseUUID(row.ReviewerID),
		Status:     models.ReviewStatus(row.Status.String),
		AssignedAt: row.AssignedAt.Time,
	}
	if row.Nilai.Valid {
		a.Nilai = &row.Nilai.Float64
	}
	if row.Komentar.Valid {
		a.Komentar = &row.Komentar.String
	}
	if row.ReviewedAt.Valid {
		a.ReviewedAt = &row.ReviewedAt.Time
	}
	return a
}

// ToReviewers converts a slice of database rows to domain models
func ToReviewers(rows []ReviewerRow) []*models.ProposalReviewer {
	reviewers := make([]*models.ProposalReviewer, len(rows))
	for i, row := range rows {
		reviewers[i] = ToReviewer(&row)
	}
	return reviewers
}

func parseUUID(s sql.NullString) uuid.UUID {
	if !s.Valid {
		return uuid.Nil
	}
	id, err := uuid.Parse(s.String)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
