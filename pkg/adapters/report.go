package adapters

import (
	"github.com/de-tools/fin-health/pkg/models/api"
	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// notPersistedID is sent as report_id when the service could not store the report.
const notPersistedID = -1

func MapAnalyzeResponseToDomainReport(resp api.AnalyzeResponse) *domain.Report {
	report := &domain.Report{
		Revenue:      decimalOrZero(resp.Revenue),
		Expenses:     decimalOrZero(resp.Expenses),
		NetProfit:    decimalOrZero(resp.NetProfit),
		Margin:       floatOrZero(resp.Margin),
		HealthStatus: domain.HealthStatus(resp.HealthStatus),
		AIAnalysis:   stringOrEmpty(resp.AIAnalysis),
		FileCount:    resp.FileCount,
	}

	id := resp.ID
	if id == nil {
		id = resp.ReportID
	}
	if id != nil && *id != notPersistedID {
		v := *id
		report.ID = &v
	}

	if resp.CreatedAt != nil && !resp.CreatedAt.IsZero() {
		created := resp.CreatedAt.Time
		report.CreatedAt = &created
	}

	return report
}

func MapReportRecordToDomainReport(record api.ReportRecord) *domain.Report {
	id := record.ID
	report := &domain.Report{
		ID:           &id,
		Revenue:      decimalOrZero(record.Revenue),
		Expenses:     decimalOrZero(record.Expenses),
		NetProfit:    decimalOrZero(record.NetProfit),
		Margin:       floatOrZero(record.Margin),
		HealthStatus: domain.HealthStatus(record.HealthStatus),
		AIAnalysis:   stringOrEmpty(record.AIAnalysis),
	}
	if record.FileCount != nil {
		report.FileCount = *record.FileCount
	}
	if record.CreatedAt != nil && !record.CreatedAt.IsZero() {
		created := record.CreatedAt.Time
		report.CreatedAt = &created
	}
	return report
}

func MapReportSummariesToDomain(summaries []api.ReportSummary) []domain.ReportSummary {
	result := make([]domain.ReportSummary, 0, len(summaries))
	for _, s := range summaries {
		summary := domain.ReportSummary{
			ID:           s.ID,
			CreatedAt:    s.CreatedAt.Time,
			HealthStatus: domain.HealthStatus(s.HealthStatus),
			Margin:       floatOrZero(s.Margin),
			Revenue:      decimalOrZero(s.Revenue),
			Expenses:     decimalOrZero(s.Expenses),
			NetProfit:    decimalOrZero(s.NetProfit),
			AIAnalysis:   stringOrEmpty(s.AIAnalysis),
		}
		if s.FileCount != nil {
			summary.FileCount = *s.FileCount
		}
		result = append(result, summary)
	}
	return result
}

func MapSnapshotToApiState(snapshot domain.Snapshot, theme string) api.State {
	state := api.State{
		View:    string(snapshot.State.View),
		Phase:   string(snapshot.State.Phase),
		History: make([]api.HistoryEntry, 0, len(snapshot.History)),
		Files:   make([]string, 0, len(snapshot.Files)),
		Notices: make([]api.Notice, 0, len(snapshot.Notices)),
		Controls: api.Controls{
			SubmitEnabled:  snapshot.Controls.SubmitEnabled,
			HistoryEnabled: snapshot.Controls.HistoryEnabled,
		},
		Theme: theme,
	}

	if r := snapshot.Report; r != nil {
		state.Report = &api.Report{
			ID:           r.ID,
			Revenue:      r.Revenue.InexactFloat64(),
			Expenses:     r.Expenses.InexactFloat64(),
			NetProfit:    r.NetProfit.InexactFloat64(),
			Margin:       r.Margin,
			HealthStatus: string(r.HealthStatus),
			AIAnalysis:   r.AIAnalysis,
			CreatedAt:    r.CreatedAt,
		}
	}
	for _, h := range snapshot.History {
		state.History = append(state.History, api.HistoryEntry{
			ID:           h.ID,
			CreatedAt:    h.CreatedAt,
			HealthStatus: string(h.HealthStatus),
			Margin:       h.Margin,
		})
	}
	for _, f := range snapshot.Files {
		state.Files = append(state.Files, f.Name)
	}
	for _, n := range snapshot.Notices {
		state.Notices = append(state.Notices, api.Notice{ID: n.ID, Level: string(n.Level), Message: n.Message})
	}

	return state
}

// decimalOrZero returns the zero value for absent columns so that entries
// without money fields compare equal to literals that omit them.
func decimalOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Decimal{}
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
