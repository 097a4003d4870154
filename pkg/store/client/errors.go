package client

import (
	"fmt"
	"net/http"
)

// AnalysisFailure is returned when POST /analyze did not produce a report.
type AnalysisFailure struct {
	Cause error
}

func (e *AnalysisFailure) Error() string {
	return fmt.Sprintf("analysis failed: %v", e.Cause)
}

func (e *AnalysisFailure) Unwrap() error {
	return e.Cause
}

// HistoryFetchFailure is returned when GET /reports did not produce a list.
type HistoryFetchFailure struct {
	Cause error
}

func (e *HistoryFetchFailure) Error() string {
	return fmt.Sprintf("failed to fetch report history: %v", e.Cause)
}

func (e *HistoryFetchFailure) Unwrap() error {
	return e.Cause
}

// ReportFetchFailure is returned when GET /reports/{id} did not produce a report.
type ReportFetchFailure struct {
	ID    int64
	Cause error
}

func (e *ReportFetchFailure) Error() string {
	return fmt.Sprintf("failed to fetch report %d: %v", e.ID, e.Cause)
}

func (e *ReportFetchFailure) Unwrap() error {
	return e.Cause
}

// StatusError carries a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("unexpected status %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound
}

// ServiceError is a failure reported by the service inside a 200 body.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "service error: " + e.Message
}
