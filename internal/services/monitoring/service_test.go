package monitoring

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

type fakeReports struct {
	reports []*models.MonitoringReport
}

func (f *fakeReports) Create(_ context.Context, report *models.MonitoringReport) (*models.MonitoringReport, error) {
	report.ID = uuid.New()
	report.CreatedAt = time.Now().UTC()
	f.reports = append(f.reports, report)
	return report, nil
}

func (f *fakeReports) GetByID(_ context.Context, id uuid.UUID) (*models.MonitoringReport, error) {
	for _, report := range f.reports {
		if report.ID == id {
			copied := *report
			return &copied, nil
		}
	}
	return nil, workflow.ErrReportNotSubmitted
}

func (f *fakeReports) GetLatestByTrack(_ context.Context, proposalID uuid.UUID, track models.MonitoringTrack) (*models.MonitoringReport, error) {
	for i := len(f.reports) - 1; i >= 0; i-- {
		if f.reports[i].ProposalID == proposalID && f.reports[i].Jenis == track {
			return f.reports[i], nil
		}
	}
	return nil, workflow.ErrReportNotSubmitted
}

func (f *fakeReports) ListByProposal(_ context.Context, proposalID uuid.UUID) ([]*models.MonitoringReport, error) {
	var out []*models.MonitoringReport
	for _, report := range f.reports {
		if report.ProposalID == proposalID {
			out = append(out, report)
		}
	}
	return out, nil
}

func (f *fakeReports) SetVerification(_ context.Context, id uuid.UUID, status models.MonitoringStatus, verifiedBy uuid.UUID, catatan *string) error {
	for _, report := range f.reports {
		if report.ID == id {
			if report.Status != models.MonitoringPending {
				return workflow.ErrReportAlreadyVerified
			}
			report.Status = status
			report.VerifiedBy = &verifiedBy
			report.Catatan = catatan
			return nil
		}
	}
	return workflow.ErrReportNotSubmitted
}

func (f *fakeReports) SupersedePending(_ context.Context, proposalID uuid.UUID, track models.MonitoringTrack) error {
	for _, report := range f.reports {
		if report.ProposalID == proposalID && report.Jenis == track && report.Status == models.MonitoringPending {
			report.Status = models.MonitoringRejected
		}
	}
	return nil
}

func (f *fakeReports) SupersedeApproved(_ context.Context, proposalID uuid.UUID, track models.MonitoringTrack) error {
	for _, report := range f.reports {
		if report.ProposalID == proposalID && report.Jenis == track && report.Status == models.MonitoringApproved {
			report.Status = models.MonitoringRejected
		}
	}
	return nil
}

func (f *fakeReports) CountApproved(_ context.Context, proposalID uuid.UUID, track models.MonitoringTrack) (int, error) {
	count := 0
	for _, report := range f.reports {
		if report.ProposalID == proposalID && report.Jenis == track && report.Status == models.MonitoringApproved {
			count++
		}
	}
	return count, nil
}

type fakeProposals struct {
	proposal *models.Proposal
}

func (f *fakeProposals) GetByID(_ context.Context, _ uuid.UUID) (*models.Proposal, error) {
	return f.proposal, nil
}

type fixture struct {
	service  *Service
	reports  *fakeReports
	proposal *models.Proposal
	ketuaID  uuid.UUID
}

func newFixture(t *testing.T, status models.ProposalStatus, config Config) *fixture {
	t.Helper()

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	proposal := &models.Proposal{
		ID:      uuid.New(),
		KetuaID: uuid.New(),
		Status:  status,
	}
	reports := &fakeReports{}

	service := NewService(
		fakeDB{},
		logger,
		reports,
		&fakeProposals{proposal: proposal},
		events.NewEmitter(nil, logger),
		config,
	)

	return &fixture{service: service, reports: reports, proposal: proposal, ketuaID: proposal.KetuaID}
}

func (f *fixture) ownerCtx() context.Context {
	ctx := utils.SetUserID(context.Background(), f.ketuaID.String())
	return utils.SetUserRole(ctx, "DOSEN")
}

func adminCtx() context.Context {
	ctx := utils.SetUserID(context.Background(), uuid.NewString())
	return utils.SetUserRole(ctx, RoleAdmin)
}

func TestSubmitReport_Progress(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	report, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackProgress, "laporan-kemajuan.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.MonitoringPending, report.Status)
	assert.Equal(t, models.TrackProgress, report.Jenis)
}

func TestSubmitReport_NotRunning(t *testing.T) {
	f := newFixture(t, models.StatusAccepted, Config{})

	_, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackProgress, "laporan.pdf")
	assert.ErrorIs(t, err, workflow.ErrProposalNotRunning)
}

func TestSubmitReport_MissingFile(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	_, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackProgress, "")
	assert.ErrorIs(t, err, workflow.ErrReportNotSubmitted)
}

func TestSubmitReport_NotOwner(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	ctx := utils.SetUserID(context.Background(), uuid.NewString())
	ctx = utils.SetUserRole(ctx, "DOSEN")

	_, err := f.service.SubmitReport(ctx, f.proposal.ID, models.TrackProgress, "laporan.pdf")
	assert.Error(t, err)
}

func TestSubmitReport_SupersedesPending(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	first, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackProgress, "v1.pdf")
	require.NoError(t, err)

	second, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackProgress, "v2.pdf")
	require.NoError(t, err)

	stored, err := f.reports.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MonitoringRejected, stored.Status)
	assert.Equal(t, models.MonitoringPending, second.Status)
}

func TestVerify_ApproveProgress(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	report, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackProgress, "laporan.pdf")
	require.NoError(t, err)

	verified, err := f.service.Verify(adminCtx(), report.ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MonitoringApproved, verified.Status)
	// progress approval never completes the grant
	assert.Equal(t, models.StatusRunning, f.proposal.Status)
}

func TestVerify_ApproveFinalLeavesProposalUntouched(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	report, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackFinal, "laporan-akhir.pdf")
	require.NoError(t, err)

	verified, err := f.service.Verify(adminCtx(), report.ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MonitoringApproved, verified.Status)
	// completing the grant is a separate proposal operation
	assert.Equal(t, models.StatusRunning, f.proposal.Status)

	ok, err := f.service.IsFinalVerified(context.Background(), f.proposal.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsFinalVerified_NoReports(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	ok, err := f.service.IsFinalVerified(context.Background(), f.proposal.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitReport_FinalCorrectionResetsApproval(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	first, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackFinal, "akhir-v1.pdf")
	require.NoError(t, err)
	_, err = f.service.Verify(adminCtx(), first.ID, true, nil)
	require.NoError(t, err)

	second, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackFinal, "akhir-v2.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.MonitoringPending, second.Status)

	stored, err := f.reports.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MonitoringRejected, stored.Status)

	ok, err := f.service.IsFinalVerified(context.Background(), f.proposal.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_RejectFinalKeepsGrantRunning(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	report, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackFinal, "laporan-akhir.pdf")
	require.NoError(t, err)

	catatan := "metodologi belum lengkap"
	verified, err := f.service.Verify(adminCtx(), report.ID, false, &catatan)
	require.NoError(t, err)
	assert.Equal(t, models.MonitoringRejected, verified.Status)
	assert.Equal(t, models.StatusRunning, f.proposal.Status)
}

func TestVerify_AlreadyVerified(t *testing.T) {
	f := newFixture(t, models.StatusRunning, Config{})

	report, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackProgress, "laporan.pdf")
	require.NoError(t, err)

	_, err = f.service.Verify(adminCtx(), report.ID, true, nil)
	require.NoError(t, err)

	_, err = f.service.Verify(adminCtx(), report.ID, false, nil)
	assert.ErrorIs(t, err, workflow.ErrReportAlreadyVerified)
}

func TestSubmitReport_FinalAfterCompleted(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, models.StatusCompleted, Config{})

		_, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackFinal, "koreksi.pdf")
		assert.ErrorIs(t, err, workflow.ErrProposalNotRunning)
	})

	t.Run("enabled", func(t *testing.T) {
		f := newFixture(t, models.StatusCompleted, Config{AllowFinalAfterCompleted: true})

		report, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackFinal, "koreksi.pdf")
		require.NoError(t, err)
		assert.Equal(t, models.MonitoringPending, report.Status)

		// approving the correction must not touch the completed status
		_, err = f.service.Verify(adminCtx(), report.ID, true, nil)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, f.proposal.Status)
	})

	t.Run("progress track stays closed", func(t *testing.T) {
		f := newFixture(t, models.StatusCompleted, Config{AllowFinalAfterCompleted: true})

		_, err := f.service.SubmitReport(f.ownerCtx(), f.proposal.ID, models.TrackProgress, "laporan.pdf")
		assert.ErrorIs(t, err, workflow.ErrProposalNotRunning)
	})
}
