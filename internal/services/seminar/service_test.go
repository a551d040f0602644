package seminar

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/workflow"
)

type fakeSeminars struct {
	seminars map[uuid.UUID]*models.Seminar
}

func newFakeSeminars() *fakeSeminars {
	return &fakeSeminars{seminars: map[uuid.UUID]*models.Seminar{}}
}

func (f *fakeSeminars) Create(_ context.Context, seminar *models.Seminar) (*models.Seminar, error) {
	seminar.ID = uuid.New()
	f.seminars[seminar.ID] = seminar
	return seminar, nil
}

func (f *fakeSeminars) GetByID(_ context.Context, id uuid.UUID) (*models.Seminar, error) {
	stored, ok := f.seminars[id]
	if !ok {
		return nil, workflow.ErrSeminarNotActive
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeSeminars) ListByProposal(_ context.Context, proposalID uuid.UUID) ([]*models.Seminar, error) {
	var out []*models.Seminar
	for _, seminar := range f.seminars {
		if seminar.ProposalID == proposalID {
			out = append(out, seminar)
		}
	}
	return out, nil
}

func (f *fakeSeminars) Update(_ context.Context, seminar *models.Seminar) (*models.Seminar, error) {
	stored := f.seminars[seminar.ID]
	*stored = *seminar
	return stored, nil
}

type fakeProposals struct {
	proposal *models.Proposal
}

func (f *fakeProposals) GetByID(_ context.Context, _ uuid.UUID) (*models.Proposal, error) {
	return f.proposal, nil
}

func (f *fakeProposals) SetJadwalSeminar(_ context.Context, _ uuid.UUID, jadwal time.Time) error {
	f.proposal.JadwalSeminar = &jadwal
	return nil
}

type fakeFinalReport struct {
	verified bool
}

func (f *fakeFinalReport) IsFinalVerified(_ context.Context, _ uuid.UUID) (bool, error) {
	return f.verified, nil
}

type fakeOutputs struct {
	verified int
}

func (f *fakeOutputs) CountVerified(_ context.Context, _ uuid.UUID) (int, error) {
	return f.verified, nil
}

type fixture struct {
	service     *Service
	seminars    *fakeSeminars
	finalReport *fakeFinalReport
	outputs     *fakeOutputs
	proposal    *models.Proposal
}

func newFixture(t *testing.T, status models.ProposalStatus, clearance *models.ClearanceStatus) *fixture {
	t.Helper()

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	proposal := &models.Proposal{
		ID:        uuid.New(),
		KetuaID:   uuid.New(),
		Status:    status,
		Clearance: clearance,
	}
	seminars := newFakeSeminars()
	finalReport := &fakeFinalReport{}
	outputs := &fakeOutputs{}

	service := NewService(logger, seminars, &fakeProposals{proposal: proposal}, finalReport, outputs, events.NewEmitter(nil, logger))
	return &fixture{service: service, seminars: seminars, finalReport: finalReport, outputs: outputs, proposal: proposal}
}

func clearance(status models.ClearanceStatus) *models.ClearanceStatus {
	return &status
}

func scheduleInput(proposalID uuid.UUID, jenis models.SeminarJenis) ScheduleInput {
	return ScheduleInput{
		ProposalID:     proposalID,
		Jenis:          jenis,
		TanggalSeminar: time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC),
		Tempat:         "Ruang Sidang LPPM",
	}
}

func TestSchedule_DefenseSeminar(t *testing.T) {
	f := newFixture(t, models.StatusInReview, clearance(models.ClearancePassed))

	seminar, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarProposal))
	require.NoError(t, err)
	assert.Equal(t, models.SeminarScheduled, seminar.Status)

	// scheduling the defense records the expected date on the proposal
	require.NotNil(t, f.proposal.JadwalSeminar)
	assert.Equal(t, seminar.TanggalSeminar, *f.proposal.JadwalSeminar)
}

func TestSchedule_DefenseSeminarWithoutClearance(t *testing.T) {
	t.Run("no clearance recorded", func(t *testing.T) {
		f := newFixture(t, models.StatusInReview, nil)

		_, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarProposal))
		assert.ErrorIs(t, err, workflow.ErrClearanceNotPassed)
	})

	t.Run("clearance failed", func(t *testing.T) {
		f := newFixture(t, models.StatusInReview, clearance(models.ClearanceFailed))

		_, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarProposal))
		assert.ErrorIs(t, err, workflow.ErrClearanceNotPassed)
	})
}

func TestSchedule_InternalSeminar(t *testing.T) {
	f := newFixture(t, models.StatusRunning, nil)
	f.finalReport.verified = true

	seminar, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarInternal))
	require.NoError(t, err)
	assert.Equal(t, models.SeminarInternal, seminar.Jenis)
	// only the defense seminar touches the proposal's expected date
	assert.Nil(t, f.proposal.JadwalSeminar)
}

func TestSchedule_InternalSeminarFinalNotVerified(t *testing.T) {
	f := newFixture(t, models.StatusRunning, clearance(models.ClearancePassed))

	_, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarInternal))
	assert.ErrorIs(t, err, workflow.ErrFinalReportNotVerified)
}

func TestSchedule_PublicSeminar(t *testing.T) {
	f := newFixture(t, models.StatusRunning, nil)
	f.outputs.verified = 1

	seminar, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarPublic))
	require.NoError(t, err)
	assert.Equal(t, models.SeminarPublic, seminar.Jenis)
}

func TestSchedule_PublicSeminarNoVerifiedOutput(t *testing.T) {
	f := newFixture(t, models.StatusRunning, clearance(models.ClearancePassed))
	f.finalReport.verified = true

	_, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarPublic))
	assert.ErrorIs(t, err, workflow.ErrNoVerifiedOutput)
}

func TestSchedule_MissingFields(t *testing.T) {
	f := newFixture(t, models.StatusInReview, clearance(models.ClearancePassed))

	input := scheduleInput(f.proposal.ID, models.SeminarProposal)
	input.Tempat = ""

	_, err := f.service.Schedule(context.Background(), input)
	assert.Error(t, err)
}

func TestUpdate_Reschedule(t *testing.T) {
	f := newFixture(t, models.StatusInReview, clearance(models.ClearancePassed))

	seminar, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarProposal))
	require.NoError(t, err)

	newDate := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	updated, err := f.service.Update(context.Background(), seminar.ID, UpdateInput{TanggalSeminar: &newDate})
	require.NoError(t, err)
	assert.Equal(t, newDate, updated.TanggalSeminar)
	assert.Equal(t, models.SeminarScheduled, updated.Status)

	require.NotNil(t, f.proposal.JadwalSeminar)
	assert.Equal(t, newDate, *f.proposal.JadwalSeminar)
}

func TestUpdate_RescheduleRechecksPrecondition(t *testing.T) {
	f := newFixture(t, models.StatusRunning, nil)
	f.outputs.verified = 1

	seminar, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarPublic))
	require.NoError(t, err)

	// the claimed output was withdrawn after scheduling
	f.outputs.verified = 0

	newDate := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	_, err = f.service.Update(context.Background(), seminar.ID, UpdateInput{TanggalSeminar: &newDate})
	assert.ErrorIs(t, err, workflow.ErrNoVerifiedOutput)
}

func TestUpdate_Complete(t *testing.T) {
	f := newFixture(t, models.StatusInReview, clearance(models.ClearancePassed))

	seminar, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarProposal))
	require.NoError(t, err)

	done := models.SeminarCompleted
	updated, err := f.service.Update(context.Background(), seminar.ID, UpdateInput{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.SeminarCompleted, updated.Status)
}

func TestUpdate_NotScheduled(t *testing.T) {
	f := newFixture(t, models.StatusInReview, clearance(models.ClearancePassed))

	seminar, err := f.service.Schedule(context.Background(), scheduleInput(f.proposal.ID, models.SeminarProposal))
	require.NoError(t, err)

	cancelled := models.SeminarCancelled
	_, err = f.service.Update(context.Background(), seminar.ID, UpdateInput{Status: &cancelled})
	require.NoError(t, err)

	newDate := time.Now().UTC()
	_, err = f.service.Update(context.Background(), seminar.ID, UpdateInput{TanggalSeminar: &newDate})
	assert.ErrorIs(t, err, workflow.ErrSeminarNotActive)
}
