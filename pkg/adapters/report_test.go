package adapters

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/de-tools/fin-health/pkg/models/api"
	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnalyzeResponseToDomainReport(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID *int64
	}{
		{
			name:   "id field",
			body:   `{"id": 12, "revenue": 1000, "expenses": 600, "net_profit": 400, "margin": 40, "health_status": "Healthy"}`,
			wantID: ptr(int64(12)),
		},
		{
			name:   "report_id fallback",
			body:   `{"report_id": 5, "revenue": "1000.50", "expenses": 600, "net_profit": 400.5, "margin": 40, "health_status": "Healthy"}`,
			wantID: ptr(int64(5)),
		},
		{
			name: "not persisted",
			body: `{"report_id": -1, "revenue": 1000, "expenses": 600, "net_profit": 400, "margin": 40, "health_status": "Healthy"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp api.AnalyzeResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))

			report := MapAnalyzeResponseToDomainReport(resp)
			assert.Equal(t, tt.wantID, report.ID)
			assert.Equal(t, domain.HealthStatusHealthy, report.HealthStatus)
			assert.Equal(t, 40.0, report.Margin)
			assert.True(t, report.Expenses.Equal(decimal.NewFromInt(600)))
			assert.Empty(t, report.AIAnalysis)
			assert.Nil(t, report.CreatedAt)
		})
	}
}

func TestMapAnalyzeResponseToDomainReport_MissingFields(t *testing.T) {
	var resp api.AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(`{"health_status": "Critical"}`), &resp))

	report := MapAnalyzeResponseToDomainReport(resp)
	assert.True(t, report.Revenue.IsZero())
	assert.True(t, report.NetProfit.IsZero())
	assert.Zero(t, report.Margin)
	assert.Equal(t, domain.HealthStatusCritical, report.HealthStatus)
}

func TestMapReportRecordToDomainReport(t *testing.T) {
	body := `{"id": 3, "created_at": "2024-03-01T10:15:00", "file_count": 2, "revenue": 500, "expenses": 900,
		"net_profit": -400, "margin": -80, "health_status": "Critical", "ai_analysis": "Cut costs."}`

	var record api.ReportRecord
	require.NoError(t, json.Unmarshal([]byte(body), &record))

	report := MapReportRecordToDomainReport(record)
	require.NotNil(t, report.ID)
	assert.Equal(t, int64(3), *report.ID)
	assert.Equal(t, 2, report.FileCount)
	assert.True(t, report.NetProfit.Equal(decimal.NewFromInt(-400)))
	assert.Equal(t, "Cut costs.", report.AIAnalysis)
	require.NotNil(t, report.CreatedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), *report.CreatedAt)
}

func TestMapReportSummariesToDomain(t *testing.T) {
	body := `[
		{"id": 9, "created_at": "2024-05-02 08:00:00", "health_status": "Healthy", "margin": 22.5, "revenue": 10},
		{"id": 8, "created_at": "2024-05-01T08:00:00Z", "health_status": "Unhealthy", "margin": null}
	]`

	var summaries []api.ReportSummary
	require.NoError(t, json.Unmarshal([]byte(body), &summaries))

	result := MapReportSummariesToDomain(summaries)
	require.Len(t, result, 2)
	assert.Equal(t, int64(9), result[0].ID)
	assert.Equal(t, 22.5, result[0].Margin)
	assert.Equal(t, time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC), result[0].CreatedAt)
	assert.Equal(t, domain.HealthStatusUnhealthy, result[1].HealthStatus)
	assert.Zero(t, result[1].Margin)

	assert.Empty(t, MapReportSummariesToDomain(nil))
}

func TestMapReportSummariesToDomain_FullRow(t *testing.T) {
	body := `[{"id": 11, "created_at": "2024-05-03T09:00:00", "file_count": 2, "revenue": 1000,
		"expenses": 600, "net_profit": 400, "margin": 40, "health_status": "Healthy",
		"ai_analysis": "Costs under control."}]`

	var summaries []api.ReportSummary
	require.NoError(t, json.Unmarshal([]byte(body), &summaries))

	result := MapReportSummariesToDomain(summaries)
	require.Len(t, result, 1)

	report := result[0].AsReport()
	require.NotNil(t, report.ID)
	assert.Equal(t, int64(11), *report.ID)
	assert.True(t, report.Revenue.Equal(decimal.NewFromInt(1000)))
	assert.True(t, report.Expenses.Equal(decimal.NewFromInt(600)))
	assert.True(t, report.NetProfit.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "Costs under control.", report.AIAnalysis)
	assert.Equal(t, 2, report.FileCount)
	assert.Equal(t, 40.0, report.Margin)
}

func TestMapSnapshotToApiState(t *testing.T) {
	id := int64(4)
	snapshot := domain.Snapshot{
		State: domain.DashboardHasReport,
		Report: &domain.Report{
			ID:           &id,
			Revenue:      decimal.NewFromInt(1000),
			NetProfit:    decimal.NewFromInt(400),
			HealthStatus: domain.HealthStatusHealthy,
		},
		Files:    []domain.FileHandle{{Name: "a.csv", Path: "/tmp/a.csv"}},
		Notices:  []domain.Notice{{ID: 1, Level: domain.NoticeError, Message: "boom"}},
		Controls: domain.Controls{SubmitEnabled: true, HistoryEnabled: true},
	}

	state := MapSnapshotToApiState(snapshot, "dark")
	assert.Equal(t, "Dashboard", state.View)
	assert.Equal(t, "HasReport", state.Phase)
	assert.Equal(t, "dark", state.Theme)
	require.NotNil(t, state.Report)
	assert.Equal(t, &id, state.Report.ID)
	assert.Equal(t, 1000.0, state.Report.Revenue)
	assert.Equal(t, []string{"a.csv"}, state.Files)
	assert.Equal(t, []api.Notice{{ID: 1, Level: "error", Message: "boom"}}, state.Notices)
	assert.NotNil(t, state.History)
	assert.True(t, state.Controls.SubmitEnabled)
}

func ptr[T any](v T) *T {
	return &v
}
