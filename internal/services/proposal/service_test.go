package proposal

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	proposalrepo "github.com/Ramsey-B/aster/internal/repositories/proposal"
	utils "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

type noopTx struct{}

func (noopTx) IsOpen() bool                     { return true }
func (noopTx) Commit(_ context.Context) error   { return nil }
func (noopTx) Rollback(_ context.Context) error { return nil }
func (noopTx) ExecContext(_ context.Context, _ string, _ ...any) (sql.Result, error) {
	return nil, nil
}
func (noopTx) GetContext(_ context.Context, _ any, _ string, _ ...any) error    { return nil }
func (noopTx) SelectContext(_ context.Context, _ any, _ string, _ ...any) error { return nil }
func (noopTx) QueryxContext(_ context.Context, _ string, _ ...any) (*sqlx.Rows, error) {
	return nil, nil
}
func (noopTx) QueryRowxContext(_ context.Context, _ string, _ ...any) *sqlx.Row { return nil }

type fakeDB struct{}

func (fakeDB) BeginTxx(_ context.Context, _ *sql.TxOptions) (*sqlx.Tx, error) { return nil, nil }
func (fakeDB) ExecContext(_ context.Context, _ string, _ ...any) (sql.Result, error) {
	return nil, nil
}
func (fakeDB) GetContext(_ context.Context, _ any, _ string, _ ...any) error    { return nil }
func (fakeDB) SelectContext(_ context.Context, _ any, _ string, _ ...any) error { return nil }
func (fakeDB) QueryxContext(_ context.Context, _ string, _ ...any) (*sqlx.Rows, error) {
	return nil, nil
}
func (fakeDB) QueryRowxContext(_ context.Context, _ string, _ ...any) *sqlx.Row { return nil }
func (fakeDB) PingContext(_ context.Context) error                              { return nil }
func (fakeDB) Close() error                                                     { return nil }
func (fakeDB) Unwrap() *sqlx.DB                                                 { return nil }
func (fakeDB) GetTx(ctx context.Context, _ *sql.TxOptions) (context.Context, database.Tx, error) {
	return ctx, noopTx{}, nil
}

type reviewRecord struct {
	reviewerID uuid.UUID
	completed  bool
}

type fakeProposals struct {
	proposals map[uuid.UUID]*models.Proposal
	reviews   map[uuid.UUID][]*reviewRecord
}

func newFakeProposals() *fakeProposals {
	return &fakeProposals{
		proposals: map[uuid.UUID]*models.Proposal{},
		reviews:   map[uuid.UUID][]*reviewRecord{},
	}
}

func (f *fakeProposals) Create(_ context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	for _, existing := range f.proposals {
		if existing.PeriodeID == proposal.PeriodeID && existing.KetuaID == proposal.KetuaID {
			return nil, workflow.ErrDuplicateKetua
		}
	}
	proposal.ID = uuid.New()
	f.proposals[proposal.ID] = proposal
	return proposal, nil
}

func (f *fakeProposals) GetByID(_ context.Context, id uuid.UUID) (*models.Proposal, error) {
	stored, ok := f.proposals[id]
	if !ok {
		return nil, workflow.ErrInvalidTransition
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeProposals) List(_ context.Context, filter proposalrepo.ListFilter) ([]*models.Proposal, error) {
	var out []*models.Proposal
	for _, proposal := range f.proposals {
		if filter.KetuaID != nil && proposal.KetuaID != *filter.KetuaID {
			continue
		}
		if filter.Status != nil && proposal.Status != *filter.Status {
			continue
		}
		out = append(out, proposal)
	}
	return out, nil
}

func (f *fakeProposals) Update(_ context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	stored := f.proposals[proposal.ID]
	status := stored.Status
	*stored = *proposal
	stored.Status = status
	return stored, nil
}

func (f *fakeProposals) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.ProposalStatus) error {
	stored := f.proposals[id]
	if stored.Status != from {
		return workflow.ErrInvalidTransition
	}
	stored.Status = to
	return nil
}

func (f *fakeProposals) SetClearance(_ context.Context, id uuid.UUID, clearance models.ClearanceStatus, catatan *string, decidedBy uuid.UUID) error {
	now := time.Now().UTC()
	stored := f.proposals[id]
	stored.Clearance = &clearance
	stored.ClearanceCatatan = catatan
	stored.ClearanceBy = &decidedBy
	stored.ClearanceAt = &now
	return nil
}

func (f *fakeProposals) SetJadwalSeminar(_ context.Context, id uuid.UUID, jadwal time.Time) error {
	f.proposals[id].JadwalSeminar = &jadwal
	return nil
}

func (f *fakeProposals) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.proposals, id)
	return nil
}

func (f *fakeProposals) AssignReviewers(_ context.Context, proposalID uuid.UUID, reviewerIDs []uuid.UUID) error {
	for _, reviewerID := range reviewerIDs {
		f.reviews[proposalID] = append(f.reviews[proposalID], &reviewRecord{reviewerID: reviewerID})
	}
	return nil
}

func (f *fakeProposals) ListReviewers(_ context.Context, proposalID uuid.UUID) ([]*models.ProposalReviewer, error) {
	var out []*models.ProposalReviewer
	for _, review := range f.reviews[proposalID] {
		out = append(out, &models.ProposalReviewer{ProposalID: proposalID, ReviewerID: review.reviewerID})
	}
	return out, nil
}

func (f *fakeProposals) CompleteReview(_ context.Context, proposalID, reviewerID uuid.UUID, _ float64, _ string) error {
	for _, review := range f.reviews[proposalID] {
		if review.reviewerID == reviewerID {
			review.completed = true
			return nil
		}
	}
	return workflow.ErrNotInvestigator
}

func (f *fakeProposals) CountReviewers(_ context.Context, proposalID uuid.UUID) (int, error) {
	return len(f.reviews[proposalID]), nil
}

func (f *fakeProposals) CountPendingReviews(_ context.Context, proposalID uuid.UUID) (int, error) {
	pending := 0
	for _, review := range f.reviews[proposalID] {
		if !review.completed {
			pending++
		}
	}
	return pending, nil
}

type fakePeriods struct {
	periode *models.Periode
}

func (f *fakePeriods) GetByID(_ context.Context, _ uuid.UUID) (*models.Periode, error) {
	return f.periode, nil
}

type fakeSchemes struct{}

func (fakeSchemes) GetByID(_ context.Context, id uuid.UUID) (*models.Skema, error) {
	return &models.Skema{ID: id, Tipe: models.SchemeBasic, DanaMaksimal: 50_000_000}, nil
}

type fakeFaculty struct {
	known map[uuid.UUID]bool
}

func (f *fakeFaculty) GetByID(_ context.Context, id uuid.UUID) (*models.Dosen, error) {
	if !f.known[id] {
		return nil, workflow.ErrNotInvestigator
	}
	return &models.Dosen{ID: id, Nama: "Dr. Test"}, nil
}

type fakeFinalReport struct {
	verified bool
}

func (f *fakeFinalReport) IsFinalVerified(_ context.Context, _ uuid.UUID) (bool, error) {
	return f.verified, nil
}

type fixture struct {
	service     *Service
	proposals   *fakeProposals
	faculty     *fakeFaculty
	finalReport *fakeFinalReport
	periode     *models.Periode
	ketuaID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	now := time.Now().UTC()
	periode := &models.Periode{
		ID:             uuid.New(),
		Nama:           "Periode Hibah 2026",
		Status:         models.PeriodeActive,
		TanggalMulai:   now.Add(-24 * time.Hour),
		TanggalSelesai: now.Add(30 * 24 * time.Hour),
	}
	ketuaID := uuid.New()
	proposals := newFakeProposals()
	faculty := &fakeFaculty{known: map[uuid.UUID]bool{ketuaID: true}}
	finalReport := &fakeFinalReport{}

	service := NewService(
		fakeDB{},
		logger,
		proposals,
		&fakePeriods{periode: periode},
		fakeSchemes{},
		faculty,
		finalReport,
		events.NewEmitter(nil, logger),
	)

	return &fixture{
		service:     service,
		proposals:   proposals,
		faculty:     faculty,
		finalReport: finalReport,
		periode:     periode,
		ketuaID:     ketuaID,
	}
}

func (f *fixture) ownerCtx() context.Context {
	ctx := utils.SetUserID(context.Background(), f.ketuaID.String())
	return utils.SetUserRole(ctx, "DOSEN")
}

func adminCtx() context.Context {
	ctx := utils.SetUserID(context.Background(), uuid.NewString())
	return utils.SetUserRole(ctx, RoleAdmin)
}

func (f *fixture) draft(t *testing.T, complete bool) *models.Proposal {
	t.Helper()

	input := CreateInput{
		PeriodeID: f.periode.ID,
		SkemaID:   uuid.New(),
		Judul:     "Pemanfaatan IoT untuk Pertanian Presisi",
		Abstrak:   "Studi penerapan sensor jaringan pada lahan pertanian.",
	}
	if complete {
		file := "proposal.pdf"
		input.FileProposal = &file
	}

	proposal, err := f.service.Create(f.ownerCtx(), input)
	require.NoError(t, err)
	return proposal
}

// submitted walks a complete draft to DIAJUKAN
func (f *fixture) submitted(t *testing.T) *models.Proposal {
	t.Helper()

	draft := f.draft(t, true)
	proposal, err := f.service.Submit(f.ownerCtx(), draft.ID)
	require.NoError(t, err)
	return proposal
}

// inReview walks a submitted proposal to DIREVIEW with the given reviewers
func (f *fixture) inReview(t *testing.T, reviewerIDs ...uuid.UUID) *models.Proposal {
	t.Helper()

	proposal := f.submitted(t)
	for _, reviewerID := range reviewerIDs {
		f.faculty.known[reviewerID] = true
	}
	require.NoError(t, f.service.AssignReviewers(adminCtx(), proposal.ID, reviewerIDs))

	current, err := f.service.Get(context.Background(), proposal.ID)
	require.NoError(t, err)
	return current
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	proposal := f.draft(t, false)
	assert.Equal(t, models.StatusDraft, proposal.Status)
	assert.Equal(t, f.ketuaID, proposal.KetuaID)
}

func TestCreate_PeriodClosed(t *testing.T) {
	f := newFixture(t)
	f.periode.Status = models.PeriodeClosed

	_, err := f.service.Create(f.ownerCtx(), CreateInput{
		PeriodeID: f.periode.ID,
		SkemaID:   uuid.New(),
		Judul:     "Judul",
		Abstrak:   "Abstrak",
	})
	assert.ErrorIs(t, err, workflow.ErrPeriodNotOpen)
}

func TestCreate_UnknownCaller(t *testing.T) {
	f := newFixture(t)

	ctx := utils.SetUserID(context.Background(), uuid.NewString())
	ctx = utils.SetUserRole(ctx, "DOSEN")

	_, err := f.service.Create(ctx, CreateInput{
		PeriodeID: f.periode.ID,
		SkemaID:   uuid.New(),
		Judul:     "Judul",
		Abstrak:   "Abstrak",
	})
	assert.ErrorIs(t, err, workflow.ErrNotInvestigator)
}

func TestCreate_DuplicateInPeriod(t *testing.T) {
	f := newFixture(t)

	f.draft(t, false)

	_, err := f.service.Create(f.ownerCtx(), CreateInput{
		PeriodeID: f.periode.ID,
		SkemaID:   uuid.New(),
		Judul:     "Proposal Kedua",
		Abstrak:   "Abstrak",
	})
	assert.ErrorIs(t, err, workflow.ErrDuplicateKetua)
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	proposal := f.submitted(t)
	assert.Equal(t, models.StatusSubmitted, proposal.Status)
}

func TestSubmit_Incomplete(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t, false)

	_, err := f.service.Submit(f.ownerCtx(), draft.ID)
	assert.ErrorIs(t, err, workflow.ErrProposalIncomplete)
}

func TestSubmit_PeriodClosedMeanwhile(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t, true)
	f.periode.Status = models.PeriodeClosed

	_, err := f.service.Submit(f.ownerCtx(), draft.ID)
	assert.ErrorIs(t, err, workflow.ErrPeriodNotOpen)
}

func TestSubmit_AlreadySubmitted(t *testing.T) {
	f := newFixture(t)
	proposal := f.submitted(t)

	_, err := f.service.Submit(f.ownerCtx(), proposal.ID)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestSubmit_NotOwner(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t, true)

	otherID := uuid.New()
	f.faculty.known[otherID] = true
	ctx := utils.SetUserID(context.Background(), otherID.String())
	ctx = utils.SetUserRole(ctx, "DOSEN")

	_, err := f.service.Submit(ctx, draft.ID)
	assert.Error(t, err)
}

func TestUpdate_OnlyEditableStates(t *testing.T) {
	f := newFixture(t)
	proposal := f.submitted(t)

	_, err := f.service.Update(f.ownerCtx(), proposal.ID, UpdateInput{Judul: "Baru", Abstrak: "Baru"})
	assert.ErrorIs(t, err, workflow.ErrProposalNotEditable)
}

func TestDelete_Draft(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t, false)

	require.NoError(t, f.service.Delete(f.ownerCtx(), draft.ID))
}

func TestDelete_Submitted(t *testing.T) {
	f := newFixture(t)
	proposal := f.submitted(t)

	err := f.service.Delete(f.ownerCtx(), proposal.ID)
	assert.ErrorIs(t, err, workflow.ErrProposalNotDeletable)
}

func TestAssignReviewers(t *testing.T) {
	f := newFixture(t)
	proposal := f.inReview(t, uuid.New(), uuid.New())

	assert.Equal(t, models.StatusInReview, proposal.Status)

	count, err := f.proposals.CountReviewers(context.Background(), proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAssignReviewers_WrongState(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t, true)

	err := f.service.AssignReviewers(adminCtx(), draft.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestAssignReviewers_UnknownReviewer(t *testing.T) {
	f := newFixture(t)
	proposal := f.submitted(t)

	err := f.service.AssignReviewers(adminCtx(), proposal.ID, []uuid.UUID{uuid.New()})
	assert.Error(t, err)
}

func TestApprove_PendingReviews(t *testing.T) {
	f := newFixture(t)
	proposal := f.inReview(t, uuid.New(), uuid.New())

	_, err := f.service.Approve(adminCtx(), proposal.ID)
	assert.ErrorIs(t, err, workflow.ErrReviewsIncomplete)
}

func TestApprove_AllReviewsComplete(t *testing.T) {
	f := newFixture(t)
	reviewerA, reviewerB := uuid.New(), uuid.New()
	proposal := f.inReview(t, reviewerA, reviewerB)

	for _, reviewerID := range []uuid.UUID{reviewerA, reviewerB} {
		ctx := utils.SetUserID(context.Background(), reviewerID.String())
		ctx = utils.SetUserRole(ctx, "REVIEWER")
		require.NoError(t, f.service.CompleteReview(ctx, proposal.ID, 85.0, "layak didanai"))
	}

	accepted, err := f.service.Approve(adminCtx(), proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)
}

func TestRequestRevision_Resubmit(t *testing.T) {
	f := newFixture(t)
	reviewerID := uuid.New()
	proposal := f.inReview(t, reviewerID)

	ctx := utils.SetUserID(context.Background(), reviewerID.String())
	ctx = utils.SetUserRole(ctx, "REVIEWER")
	require.NoError(t, f.service.CompleteReview(ctx, proposal.ID, 60.0, "perbaiki metodologi"))

	revised, err := f.service.RequestRevision(adminCtx(), proposal.ID, "perbaiki metodologi")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevision, revised.Status)

	// the investigator can edit and resubmit
	file := "proposal-v2.pdf"
	_, err = f.service.Update(f.ownerCtx(), proposal.ID, UpdateInput{
		Judul:        "Judul Revisi",
		Abstrak:      "Abstrak revisi",
		FileProposal: &file,
	})
	require.NoError(t, err)

	resubmitted, err := f.service.Submit(f.ownerCtx(), proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, resubmitted.Status)
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	reviewerID := uuid.New()
	proposal := f.inReview(t, reviewerID)

	ctx := utils.SetUserID(context.Background(), reviewerID.String())
	ctx = utils.SetUserRole(ctx, "REVIEWER")
	require.NoError(t, f.service.CompleteReview(ctx, proposal.ID, 40.0, "tidak layak"))

	rejected, err := f.service.Reject(adminCtx(), proposal.ID, "tidak layak")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	// DITOLAK is terminal
	_, err = f.service.Submit(adminCtx(), proposal.ID)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestCompleteReview_NotAssigned(t *testing.T) {
	f := newFixture(t)
	proposal := f.inReview(t, uuid.New())

	strangerID := uuid.New()
	f.faculty.known[strangerID] = true
	ctx := utils.SetUserID(context.Background(), strangerID.String())
	ctx = utils.SetUserRole(ctx, "REVIEWER")

	err := f.service.CompleteReview(ctx, proposal.ID, 90.0, "bagus")
	assert.Error(t, err)
}

func TestSetClearance(t *testing.T) {
	f := newFixture(t)
	reviewerID := uuid.New()
	proposal := f.inReview(t, reviewerID)

	ctx := utils.SetUserID(context.Background(), reviewerID.String())
	ctx = utils.SetUserRole(ctx, "REVIEWER")
	require.NoError(t, f.service.CompleteReview(ctx, proposal.ID, 85.0, "layak"))

	_, err := f.service.Approve(adminCtx(), proposal.ID)
	require.NoError(t, err)

	updated, err := f.service.SetClearance(adminCtx(), proposal.ID, models.ClearancePassed, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.Clearance)
	assert.Equal(t, models.ClearancePassed, *updated.Clearance)
	assert.NotNil(t, updated.ClearanceBy)
	assert.NotNil(t, updated.ClearanceAt)
}

func TestSetClearance_DuringReview(t *testing.T) {
	f := newFixture(t)
	proposal := f.submitted(t)

	// clearance gates the defense seminar, so it can be recorded as soon as
	// the proposal is submitted
	updated, err := f.service.SetClearance(adminCtx(), proposal.ID, models.ClearancePassed, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ClearancePassed, *updated.Clearance)
}

func TestSetClearance_FailedRequiresNote(t *testing.T) {
	f := newFixture(t)
	proposal := f.submitted(t)

	_, err := f.service.SetClearance(adminCtx(), proposal.ID, models.ClearanceFailed, nil)
	assert.ErrorIs(t, err, workflow.ErrClearanceNoteRequired)

	empty := ""
	_, err = f.service.SetClearance(adminCtx(), proposal.ID, models.ClearanceFailed, &empty)
	assert.ErrorIs(t, err, workflow.ErrClearanceNoteRequired)

	note := "kelengkapan administrasi belum terpenuhi"
	updated, err := f.service.SetClearance(adminCtx(), proposal.ID, models.ClearanceFailed, &note)
	require.NoError(t, err)
	require.NotNil(t, updated.ClearanceCatatan)
	assert.Equal(t, note, *updated.ClearanceCatatan)
}

func TestSetClearance_WrongState(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t, true)

	_, err := f.service.SetClearance(adminCtx(), draft.ID, models.ClearancePassed, nil)
	assert.ErrorIs(t, err, workflow.ErrProposalNotAccepted)
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	proposal := f.draft(t, true)
	f.proposals.proposals[proposal.ID].Status = models.StatusRunning
	f.finalReport.verified = true

	completed, err := f.service.Complete(adminCtx(), proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
}

func TestComplete_FinalReportNotVerified(t *testing.T) {
	f := newFixture(t)
	proposal := f.draft(t, true)
	f.proposals.proposals[proposal.ID].Status = models.StatusRunning

	_, err := f.service.Complete(adminCtx(), proposal.ID)
	assert.ErrorIs(t, err, workflow.ErrFinalReportNotVerified)
}

func TestComplete_NotRunning(t *testing.T) {
	f := newFixture(t)
	proposal := f.submitted(t)
	f.finalReport.verified = true

	_, err := f.service.Complete(adminCtx(), proposal.ID)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestList_NonAdminSeesOwnOnly(t *testing.T) {
	f := newFixture(t)
	f.draft(t, false)

	// a second investigator with their own proposal
	otherID := uuid.New()
	f.faculty.known[otherID] = true
	ctx := utils.SetUserID(context.Background(), otherID.String())
	ctx = utils.SetUserRole(ctx, "DOSEN")
	_, err := f.service.Create(ctx, CreateInput{
		PeriodeID: f.periode.ID,
		SkemaID:   uuid.New(),
		Judul:     "Proposal Lain",
		Abstrak:   "Abstrak",
	})
	require.NoError(t, err)

	mine, err := f.service.List(f.ownerCtx(), proposalrepo.ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.ketuaID, mine[0].KetuaID)

	all, err := f.service.List(adminCtx(), proposalrepo.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
