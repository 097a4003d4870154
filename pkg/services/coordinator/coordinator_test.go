package coordinator

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/de-tools/fin-health/pkg/services/projector"
	"github.com/de-tools/fin-health/pkg/store/client"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SubmitForAnalysis(ctx context.Context, files []domain.FileHandle) (*domain.Report, error) {
	args := m.Called(ctx, files)
	report, _ := args.Get(0).(*domain.Report)
	return report, args.Error(1)
}

func (m *mockStore) ListReports(ctx context.Context) ([]domain.ReportSummary, error) {
	args := m.Called(ctx)
	summaries, _ := args.Get(0).([]domain.ReportSummary)
	return summaries, args.Error(1)
}

func (m *mockStore) GetReport(ctx context.Context, id int64) (*domain.Report, error) {
	args := m.Called(ctx, id)
	report, _ := args.Get(0).(*domain.Report)
	return report, args.Error(1)
}

var (
	ledger = []domain.FileHandle{{Name: "ledger.csv", Path: "/data/ledger.csv"}}

	healthyReport = &domain.Report{
		Revenue:      decimal.NewFromInt(1000),
		Expenses:     decimal.NewFromInt(600),
		NetProfit:    decimal.NewFromInt(400),
		Margin:       40,
		HealthStatus: domain.HealthStatusHealthy,
		AIAnalysis:   "Looks good",
	}

	unhealthySummary = domain.ReportSummary{
		ID:           7,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		HealthStatus: domain.HealthStatusUnhealthy,
		Margin:       5,
	}
)

func setup(t *testing.T, opts ...func(*Options)) (*Coordinator, *mockStore) {
	t.Helper()
	store := new(mockStore)
	o := Options{Store: store}
	for _, fn := range opts {
		fn(&o)
	}
	c := New(o)
	t.Cleanup(func() {
		c.Wait()
		store.AssertExpectations(t)
	})
	return c, store
}

func TestCoordinator_InitialState(t *testing.T) {
	c, _ := setup(t)

	snap := c.Snapshot()
	assert.Equal(t, domain.DashboardNoReport, snap.State)
	assert.Nil(t, snap.Report)
	assert.Empty(t, snap.History)
	assert.Equal(t, domain.Controls{SubmitEnabled: true, HistoryEnabled: true}, snap.Controls)
}

func TestCoordinator_SubmitEmptySelection(t *testing.T) {
	c, store := setup(t)

	err := c.Submit(context.Background())
	c.Wait()

	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, domain.DashboardNoReport, c.State())
	store.AssertNotCalled(t, "SubmitForAnalysis", mock.Anything, mock.Anything)

	notices := c.Snapshot().Notices
	require.Len(t, notices, 1)
	assert.Equal(t, domain.NoticeWarning, notices[0].Level)
	assert.Equal(t, "Please select a file!", notices[0].Message)
}

// Scenario A.
func TestCoordinator_SubmitSuccess(t *testing.T) {
	c, store := setup(t)
	store.On("SubmitForAnalysis", mock.Anything, ledger).Return(healthyReport, nil).Once()

	c.SelectFiles(ledger)
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, domain.DashboardHasReport, snap.State)
	assert.Empty(t, snap.Files)
	assert.Equal(t, domain.OpSucceeded, snap.Analyze.State)
	require.NotNil(t, snap.Report)

	projection, err := projector.Project(snap.Report)
	require.NoError(t, err)
	assert.Equal(t, "$1,000", projection.Formatted.Revenue)
	assert.Equal(t, "$600", projection.Formatted.Expenses)
	assert.Equal(t, "40%", projection.Formatted.Margin)
	assert.Equal(t, "Healthy", projection.Formatted.HealthStatus)
	assert.Equal(t, projector.ColorPositive, projection.Formatted.HealthColor)
	assert.Equal(t, []projector.Point{{Name: "Net Profit", Value: 400}, {Name: "Expenses", Value: 600}}, projection.Series)
}

// Scenario D.
func TestCoordinator_SubmitFailureKeepsSelection(t *testing.T) {
	c, store := setup(t)
	failure := &client.AnalysisFailure{Cause: &client.StatusError{Code: http.StatusInternalServerError}}
	store.On("SubmitForAnalysis", mock.Anything, ledger).Return(nil, failure).Once()

	c.SelectFiles(ledger)
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, domain.DashboardNoReport, snap.State)
	assert.Equal(t, ledger, snap.Files)
	assert.Equal(t, domain.OpFailed, snap.Analyze.State)
	require.Len(t, snap.Notices, 1)
	assert.Equal(t, domain.NoticeError, snap.Notices[0].Level)
	assert.Contains(t, snap.Notices[0].Message, "Error connecting to backend")

	t.Run("retry without reselecting", func(t *testing.T) {
		store.On("SubmitForAnalysis", mock.Anything, ledger).Return(healthyReport, nil).Once()
		require.NoError(t, c.Submit(context.Background()))
		c.Wait()
		assert.Equal(t, domain.DashboardHasReport, c.State())
	})
}

func TestCoordinator_DoubleSubmitIsPrevented(t *testing.T) {
	c, store := setup(t)
	release := make(chan struct{})
	store.On("SubmitForAnalysis", mock.Anything, ledger).
		Run(func(mock.Arguments) { <-release }).
		Return(healthyReport, nil).Once()

	c.SelectFiles(ledger)
	require.NoError(t, c.Submit(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, domain.DashboardLoading, snap.State)
	assert.False(t, snap.Controls.SubmitEnabled)

	assert.ErrorIs(t, c.Submit(context.Background()), ErrBusy)
	assert.ErrorIs(t, c.Submit(context.Background()), ErrBusy)

	close(release)
	c.Wait()

	store.AssertNumberOfCalls(t, "SubmitForAnalysis", 1)
	assert.True(t, c.Snapshot().Controls.SubmitEnabled)
}

func TestCoordinator_SubmitIgnoresCallerCancellation(t *testing.T) {
	c, store := setup(t)
	store.On("SubmitForAnalysis", mock.Anything, ledger).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			assert.NoError(t, ctx.Err())
		}).
		Return(healthyReport, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	c.SelectFiles(ledger)
	require.NoError(t, c.Submit(ctx))
	cancel()
	c.Wait()

	assert.Equal(t, domain.DashboardHasReport, c.State())
}

func TestCoordinator_ResetReport(t *testing.T) {
	c, store := setup(t)

	assert.ErrorIs(t, c.ResetReport(), ErrInvalidTransition)

	store.On("SubmitForAnalysis", mock.Anything, ledger).Return(healthyReport, nil).Once()
	c.SelectFiles(ledger)
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	assert.ErrorIs(t, c.Submit(context.Background()), ErrInvalidTransition)

	require.NoError(t, c.ResetReport())
	snap := c.Snapshot()
	assert.Equal(t, domain.DashboardNoReport, snap.State)
	assert.Nil(t, snap.Report)
}

// Scenario B.
func TestCoordinator_OpenHistoryEmpty(t *testing.T) {
	c, store := setup(t)
	store.On("ListReports", mock.Anything).Return([]domain.ReportSummary{}, nil).Once()

	require.NoError(t, c.OpenHistory(context.Background()))
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, domain.HistoryLoaded, snap.State)
	assert.Empty(t, snap.History)
	assert.Empty(t, snap.Notices)
}

// Scenario C.
func TestCoordinator_ViewDetails(t *testing.T) {
	c, store := setup(t)
	list := []domain.ReportSummary{unhealthySummary}
	store.On("ListReports", mock.Anything).Return(list, nil).Once()

	require.NoError(t, c.OpenHistory(context.Background()))
	c.Wait()
	require.NoError(t, c.ViewDetails(context.Background(), 7))

	snap := c.Snapshot()
	assert.Equal(t, domain.DashboardHasReport, snap.State)
	require.NotNil(t, snap.Report)
	require.NotNil(t, snap.Report.ID)
	assert.Equal(t, int64(7), *snap.Report.ID)
	assert.Equal(t, 5.0, snap.Report.Margin)
	assert.Equal(t, []domain.ReportSummary{unhealthySummary}, snap.History)

	projection, err := projector.Project(snap.Report)
	require.NoError(t, err)
	assert.Equal(t, "5%", projection.Formatted.Margin)
	assert.Equal(t, projector.ColorNegative, projection.Formatted.HealthColor)

	t.Run("back in history the list is unchanged", func(t *testing.T) {
		store.On("ListReports", mock.Anything).Return(list, nil).Once()
		require.NoError(t, c.OpenHistory(context.Background()))
		c.Wait()
		assert.Equal(t, []domain.ReportSummary{unhealthySummary}, c.Snapshot().History)
		assert.Equal(t, int64(7), *c.Snapshot().Report.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := c.ViewDetails(context.Background(), 99)
		assert.ErrorIs(t, err, ErrUnknownReport)
		assert.Equal(t, domain.HistoryLoaded, c.State())
	})
}

func TestCoordinator_ViewDetailsOnlyFromLoadedHistory(t *testing.T) {
	c, _ := setup(t)
	assert.ErrorIs(t, c.ViewDetails(context.Background(), 7), ErrInvalidTransition)
}

func TestCoordinator_HistoryFailureKeepsPreviousList(t *testing.T) {
	c, store := setup(t)
	list := []domain.ReportSummary{unhealthySummary}
	store.On("ListReports", mock.Anything).Return(list, nil).Once()
	store.On("ListReports", mock.Anything).
		Return(nil, &client.HistoryFetchFailure{Cause: errors.New("connection refused")}).Once()

	require.NoError(t, c.OpenHistory(context.Background()))
	c.Wait()
	c.OpenDashboard()
	require.NoError(t, c.OpenHistory(context.Background()))
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, domain.HistoryError, snap.State)
	assert.Equal(t, list, snap.History)
	require.Len(t, snap.Notices, 1)
	assert.Contains(t, snap.Notices[0].Message, "Could not fetch history")

	assert.ErrorIs(t, c.ViewDetails(context.Background(), 7), ErrInvalidTransition)

	c.OpenDashboard()
	assert.Equal(t, domain.DashboardNoReport, c.State())
}

func TestCoordinator_DuplicateHistoryTriggerIsIgnored(t *testing.T) {
	c, store := setup(t)
	release := make(chan struct{})
	store.On("ListReports", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]domain.ReportSummary{unhealthySummary}, nil).Once()

	require.NoError(t, c.OpenHistory(context.Background()))
	assert.Equal(t, domain.HistoryLoading, c.State())
	assert.False(t, c.Snapshot().Controls.HistoryEnabled)

	assert.ErrorIs(t, c.OpenHistory(context.Background()), ErrBusy)
	assert.Equal(t, domain.HistoryLoading, c.State())

	close(release)
	c.Wait()
	store.AssertNumberOfCalls(t, "ListReports", 1)
	assert.Equal(t, domain.HistoryLoaded, c.State())
}

func TestCoordinator_HistoryResolvesInBackground(t *testing.T) {
	c, store := setup(t)
	release := make(chan struct{})
	store.On("ListReports", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]domain.ReportSummary{unhealthySummary}, nil).Once()

	require.NoError(t, c.OpenHistory(context.Background()))
	c.OpenDashboard()
	assert.Equal(t, domain.DashboardNoReport, c.State())

	close(release)
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, domain.DashboardNoReport, snap.State)
	assert.Equal(t, []domain.ReportSummary{unhealthySummary}, snap.History)
}

func TestCoordinator_ReturnToHistoryWhileLoading(t *testing.T) {
	c, store := setup(t)
	release := make(chan struct{})
	store.On("ListReports", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]domain.ReportSummary{unhealthySummary}, nil).Once()

	require.NoError(t, c.OpenHistory(context.Background()))
	c.OpenDashboard()
	assert.Equal(t, domain.DashboardNoReport, c.State())
	assert.True(t, c.Snapshot().Controls.HistoryEnabled)

	require.NoError(t, c.OpenHistory(context.Background()))
	assert.Equal(t, domain.HistoryLoading, c.State())
	assert.False(t, c.Snapshot().Controls.HistoryEnabled)
	assert.ErrorIs(t, c.OpenHistory(context.Background()), ErrBusy)

	close(release)
	c.Wait()
	store.AssertNumberOfCalls(t, "ListReports", 1)
	assert.Equal(t, domain.HistoryLoaded, c.State())
	assert.Equal(t, []domain.ReportSummary{unhealthySummary}, c.Snapshot().History)
}

func TestCoordinator_AnalysisResolvesWhileOnHistory(t *testing.T) {
	c, store := setup(t)
	release := make(chan struct{})
	store.On("SubmitForAnalysis", mock.Anything, ledger).
		Run(func(mock.Arguments) { <-release }).
		Return(healthyReport, nil).Once()
	store.On("ListReports", mock.Anything).Return([]domain.ReportSummary{}, nil).Once()

	c.SelectFiles(ledger)
	require.NoError(t, c.Submit(context.Background()))
	require.NoError(t, c.OpenHistory(context.Background()))

	close(release)
	c.Wait()

	assert.Equal(t, domain.HistoryLoaded, c.State())
	assert.Empty(t, c.Snapshot().Files)

	c.OpenDashboard()
	assert.Equal(t, domain.DashboardHasReport, c.State())
}

func TestCoordinator_FetchDetails(t *testing.T) {
	full := &domain.Report{
		ID:           func() *int64 { id := int64(7); return &id }(),
		Revenue:      decimal.NewFromInt(100),
		Expenses:     decimal.NewFromInt(95),
		NetProfit:    decimal.NewFromInt(5),
		Margin:       5,
		HealthStatus: domain.HealthStatusUnhealthy,
		AIAnalysis:   "Thin margin",
	}

	t.Run("success", func(t *testing.T) {
		c, store := setup(t, func(o *Options) { o.FetchDetails = true })
		store.On("ListReports", mock.Anything).Return([]domain.ReportSummary{unhealthySummary}, nil).Once()
		store.On("GetReport", mock.Anything, int64(7)).Return(full, nil).Once()

		require.NoError(t, c.OpenHistory(context.Background()))
		c.Wait()
		require.NoError(t, c.ViewDetails(context.Background(), 7))
		c.Wait()

		snap := c.Snapshot()
		assert.Equal(t, domain.DashboardHasReport, snap.State)
		assert.Equal(t, "Thin margin", snap.Report.AIAnalysis)
	})

	t.Run("failure stays on history", func(t *testing.T) {
		c, store := setup(t, func(o *Options) { o.FetchDetails = true })
		store.On("ListReports", mock.Anything).Return([]domain.ReportSummary{unhealthySummary}, nil).Once()
		store.On("GetReport", mock.Anything, int64(7)).
			Return(nil, &client.ReportFetchFailure{ID: 7, Cause: &client.StatusError{Code: http.StatusNotFound}}).Once()

		require.NoError(t, c.OpenHistory(context.Background()))
		c.Wait()
		require.NoError(t, c.ViewDetails(context.Background(), 7))
		c.Wait()

		snap := c.Snapshot()
		assert.Equal(t, domain.HistoryLoaded, snap.State)
		assert.Nil(t, snap.Report)
		require.Len(t, snap.Notices, 1)
		assert.Equal(t, domain.OpFailed, snap.Detail.State)
	})
}

func TestCoordinator_DismissNotice(t *testing.T) {
	c, _ := setup(t)
	_ = c.Submit(context.Background())
	_ = c.Submit(context.Background())

	notices := c.Snapshot().Notices
	require.Len(t, notices, 2)

	require.NoError(t, c.DismissNotice(notices[0].ID))
	assert.Equal(t, []domain.Notice{notices[1]}, c.Snapshot().Notices)
	assert.ErrorIs(t, c.DismissNotice(notices[0].ID), ErrUnknownNotice)
}

func TestCoordinator_Subscribe(t *testing.T) {
	c, store := setup(t)
	store.On("SubmitForAnalysis", mock.Anything, ledger).Return(healthyReport, nil).Once()

	updates, unsubscribe := c.Subscribe()
	defer unsubscribe()

	c.SelectFiles(ledger)
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	var last domain.Snapshot
	require.Eventually(t, func() bool {
		select {
		case last = <-updates:
		default:
		}
		return last.State == domain.DashboardHasReport
	}, time.Second, 5*time.Millisecond)

	unsubscribe()
	assert.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, time.Second, 5*time.Millisecond)
}
