package domain

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "Healthy"
	HealthStatusUnhealthy HealthStatus = "Unhealthy"
	HealthStatusCritical  HealthStatus = "Critical"
)

func (s HealthStatus) IsHealthy() bool {
	return s == HealthStatusHealthy
}

// Report is the result of one analysis as returned by the remote service.
// Margin and HealthStatus are authoritative and never recomputed locally.
type Report struct {
	ID           *int64 // nil until the service persisted the report
	Revenue      decimal.Decimal
	Expenses     decimal.Decimal
	NetProfit    decimal.Decimal
	Margin       float64 // percentage
	HealthStatus HealthStatus
	AIAnalysis   string
	FileCount    int
	CreatedAt    *time.Time
}

// ReportSummary is one entry of the history list. Only ID, CreatedAt,
// HealthStatus and Margin are guaranteed; the remaining fields are filled
// when the service sends the full row and stay zero otherwise.
type ReportSummary struct {
	ID           int64
	CreatedAt    time.Time
	HealthStatus HealthStatus
	Margin       float64

	Revenue    decimal.Decimal
	Expenses   decimal.Decimal
	NetProfit  decimal.Decimal
	AIAnalysis string
	FileCount  int
}

// AsReport reuses the list entry as a detail object, carrying exactly what
// the entry holds.
func (s ReportSummary) AsReport() *Report {
	id := s.ID
	created := s.CreatedAt
	return &Report{
		ID:           &id,
		Revenue:      s.Revenue,
		Expenses:     s.Expenses,
		NetProfit:    s.NetProfit,
		Margin:       s.Margin,
		HealthStatus: s.HealthStatus,
		AIAnalysis:   s.AIAnalysis,
		FileCount:    s.FileCount,
		CreatedAt:    &created,
	}
}

// FileHandle is an opaque reference to a user-selected document.
type FileHandle struct {
	Name string
	Path string
}

func (f FileHandle) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	return file, nil
}
