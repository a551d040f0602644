package proposal_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	proposalrepo "github.com/Ramsey-B/aster/internal/repositories/proposal"
	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "aster"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

// seedGrantRefs inserts the period, scheme and investigator rows a proposal
// needs to satisfy its foreign keys.
func seedGrantRefs(t *testing.T, db database.DB) (periodeID, skemaID, ketuaID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	periodeID = uuid.New()
	_, err := db.ExecContext(ctx,
		`INSERT INTO periode (id, nama, tahun_anggaran, tanggal_mulai, tanggal_selesai, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		periodeID.String(), "Periode Test", "2026", time.Now().AddDate(0, -1, 0), time.Now().AddDate(0, 1, 0), "AKTIF")
	require.NoError(t, err)

	skemaID = uuid.New()
	_, err = db.ExecContext(ctx,
		`INSERT INTO skema (id, nama, tipe, dana_maksimal) VALUES ($1, $2, $3, $4)`,
		skemaID.String(), "Penelitian Dasar Test", "DASAR", 50_000_000)
	require.NoError(t, err)

	ketuaID = seedDosen(t, db)
	return periodeID, skemaID, ketuaID
}

func seedDosen(t *testing.T, db database.DB) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO dosen (id, nidn, nama, email) VALUES ($1, $2, $3, $4)`,
		id.String(), id.String()[:18], "Dosen Test", id.String()+"@test.local")
	require.NoError(t, err)
	return id
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestProposalRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := proposalrepo.NewRepository(db, logger)

	periodeID, skemaID, ketuaID := seedGrantRefs(t, db)
	ctx := context.Background()

	filePath := "/uploads/proposal.pdf"
	created, err := repo.Create(ctx, &models.Proposal{
		PeriodeID:    periodeID,
		SkemaID:      skemaID,
		KetuaID:      ketuaID,
		Judul:        "Kajian Sistem Irigasi",
		Abstrak:      "Studi awal sistem irigasi tetes.",
		FileProposal: &filePath,
		Anggota: database.JSONB[[]models.TeamMember]{Data: []models.TeamMember{
			{Nama: "Anggota Satu", Peran: "anggota"},
		}},
		Status: models.StatusDraft,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, models.StatusDraft, fetched.Status)
	require.Len(t, fetched.Anggota.Data, 1)
	assert.Equal(t, "Anggota Satu", fetched.Anggota.Data[0].Nama)

	// A second lead proposal in the same period hits the unique constraint.
	_, err = repo.Create(ctx, &models.Proposal{
		PeriodeID: periodeID,
		SkemaID:   skemaID,
		KetuaID:   ketuaID,
		Judul:     "Proposal Kedua",
		Abstrak:   "Duplikat ketua.",
		Status:    models.StatusDraft,
	})
	assert.ErrorIs(t, err, workflow.ErrDuplicateKetua)

	fetched.Judul = "Kajian Sistem Irigasi Tetes"
	updated, err := repo.Update(ctx, fetched)
	require.NoError(t, err)
	assert.Equal(t, "Kajian Sistem Irigasi Tetes", updated.Judul)

	listed, err := repo.List(ctx, proposalrepo.ListFilter{KetuaID: &ketuaID})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, created.ID)
	assertNotFound(t, err)
}

func TestProposalRepository_StatusTransitions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := proposalrepo.NewRepository(db, getTestLogger())

	periodeID, skemaID, ketuaID := seedGrantRefs(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Proposal{
		PeriodeID: periodeID,
		SkemaID:   skemaID,
		KetuaID:   ketuaID,
		Judul:     "Transisi Status",
		Abstrak:   "Uji transisi status.",
		Status:    models.StatusDraft,
	})
	require.NoError(t, err)

	err = repo.UpdateStatus(ctx, created.ID, models.StatusDraft, models.StatusSubmitted)
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, fetched.Status)
	assert.NotNil(t, fetched.SubmittedAt)

	// The guarded update rejects a stale expected status.
	err = repo.UpdateStatus(ctx, created.ID, models.StatusDraft, models.StatusSubmitted)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	adminID := uuid.New()
	note := "administrasi lengkap"
	err = repo.SetClearance(ctx, created.ID, models.ClearancePassed, &note, adminID)
	require.NoError(t, err)

	fetched, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Clearance)
	assert.Equal(t, models.ClearancePassed, *fetched.Clearance)
	require.NotNil(t, fetched.ClearanceBy)
	assert.Equal(t, adminID, *fetched.ClearanceBy)
	require.NotNil(t, fetched.ClearanceCatatan)
	assert.Equal(t, note, *fetched.ClearanceCatatan)
	assert.NotNil(t, fetched.ClearanceAt)

	jadwal := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	err = repo.SetJadwalSeminar(ctx, created.ID, jadwal)
	require.NoError(t, err)

	fetched, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.JadwalSeminar)
	assert.Equal(t, jadwal, fetched.JadwalSeminar.UTC().Truncate(time.Second))
}

func TestProposalRepository_Reviewers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := proposalrepo.NewRepository(db, getTestLogger())

	periodeID, skemaID, ketuaID := seedGrantRefs(t, db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Proposal{
		PeriodeID: periodeID,
		SkemaID:   skemaID,
		KetuaID:   ketuaID,
		Judul:     "Penugasan Reviewer",
		Abstrak:   "Uji penugasan reviewer.",
		Status:    models.StatusSubmitted,
	})
	require.NoError(t, err)

	reviewerA := seedDosen(t, db)
	reviewerB := seedDosen(t, db)

	err = repo.AssignReviewers(ctx, created.ID, []uuid.UUID{reviewerA, reviewerB})
	require.NoError(t, err)

	// Re-assignment is a no-op, not a conflict.
	err = repo.AssignReviewers(ctx, created.ID, []uuid.UUID{reviewerA})
	require.NoError(t, err)

	count, err := repo.CountReviewers(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	pending, err := repo.CountPendingReviews(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	err = repo.CompleteReview(ctx, created.ID, reviewerA, 85.5, "layak didanai")
	require.NoError(t, err)

	pending, err = repo.CountPendingReviews(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	reviewers, err := repo.ListReviewers(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, reviewers, 2)

	var done *models.ProposalReviewer
	for _, r := range reviewers {
		if r.ReviewerID == reviewerA {
			done = r
		}
	}
	require.NotNil(t, done)
	assert.Equal(t, models.ReviewCompleted, done.Status)
	require.NotNil(t, done.Nilai)
	assert.InDelta(t, 85.5, *done.Nilai, 0.001)
}
