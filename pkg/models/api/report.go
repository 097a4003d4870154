package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AnalyzeResponse is the body of POST /analyze. The service reports failures
// either with a non-2xx status or with a 200 body carrying Error.
type AnalyzeResponse struct {
	Status       string           `json:"status,omitempty"`
	ID           *int64           `json:"id,omitempty"`
	ReportID     *int64           `json:"report_id,omitempty"`
	FileCount    int              `json:"file_count,omitempty"`
	Revenue      *decimal.Decimal `json:"revenue"`
	Expenses     *decimal.Decimal `json:"expenses"`
	NetProfit    *decimal.Decimal `json:"net_profit"`
	Margin       *float64         `json:"margin"`
	HealthStatus string           `json:"health_status"`
	AIAnalysis   *string          `json:"ai_analysis"`
	CreatedAt    *Timestamp       `json:"created_at,omitempty"`
	Error        *string          `json:"error,omitempty"`
}

// ReportRecord is a stored report as returned by GET /reports/{id}.
type ReportRecord struct {
	ID           int64            `json:"id"`
	CreatedAt    *Timestamp       `json:"created_at"`
	FileCount    *int             `json:"file_count"`
	Revenue      *decimal.Decimal `json:"revenue"`
	Expenses     *decimal.Decimal `json:"expenses"`
	NetProfit    *decimal.Decimal `json:"net_profit"`
	Margin       *float64         `json:"margin"`
	HealthStatus string           `json:"health_status"`
	AIAnalysis   *string          `json:"ai_analysis"`
}

// ReportSummary is one entry of GET /reports. The service may send the full
// stored row; the money and narrative columns are optional.
type ReportSummary struct {
	ID           int64            `json:"id"`
	CreatedAt    Timestamp        `json:"created_at"`
	HealthStatus string           `json:"health_status"`
	Margin       *float64         `json:"margin"`
	FileCount    *int             `json:"file_count"`
	Revenue      *decimal.Decimal `json:"revenue"`
	Expenses     *decimal.Decimal `json:"expenses"`
	NetProfit    *decimal.Decimal `json:"net_profit"`
	AIAnalysis   *string          `json:"ai_analysis"`
}

// Timestamp accepts RFC 3339 values as well as the naive ISO form
// (no zone offset) the service emits for UTC columns.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode timestamp: %w", err)
	}
	if raw == nil || *raw == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, *raw)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp format: %q", *raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
