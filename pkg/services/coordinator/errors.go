package coordinator

import "errors"

var (
	// ErrEmptySelection is returned by Submit when no files are staged.
	ErrEmptySelection = errors.New("no files selected")
	// ErrBusy is returned when the triggering control is disabled because the
	// same operation is already in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrInvalidTransition is returned when the action is not offered by the
	// current view state.
	ErrInvalidTransition = errors.New("action not available in the current view")
	ErrUnknownReport     = errors.New("report is not in the history list")
	ErrUnknownNotice     = errors.New("notice not found")
)

const (
	msgEmptySelection = "Please select a file!"
	msgAnalysisFailed = "Error connecting to backend"
	msgHistoryFailed  = "Could not fetch history. Is backend running?"
	msgDetailFailed   = "Could not load report details"
)
