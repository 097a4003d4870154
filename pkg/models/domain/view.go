package domain

type View string

const (
	ViewDashboard View = "Dashboard"
	ViewHistory   View = "History"
)

// Phase is the sub-state of the active view.
type Phase string

const (
	PhaseNoReport  Phase = "NoReport"
	PhaseLoading   Phase = "Loading"
	PhaseHasReport Phase = "HasReport"
	PhaseLoaded    Phase = "Loaded"
	PhaseError     Phase = "Error"
)

type ViewState struct {
	View  View
	Phase Phase
}

var (
	DashboardNoReport  = ViewState{View: ViewDashboard, Phase: PhaseNoReport}
	DashboardLoading   = ViewState{View: ViewDashboard, Phase: PhaseLoading}
	DashboardHasReport = ViewState{View: ViewDashboard, Phase: PhaseHasReport}
	HistoryLoading     = ViewState{View: ViewHistory, Phase: PhaseLoading}
	HistoryLoaded      = ViewState{View: ViewHistory, Phase: PhaseLoaded}
	HistoryError       = ViewState{View: ViewHistory, Phase: PhaseError}
)

func (v ViewState) String() string {
	return string(v.View) + "." + string(v.Phase)
}

type OpState string

const (
	OpIdle      OpState = "idle"
	OpInFlight  OpState = "in_flight"
	OpSucceeded OpState = "succeeded"
	OpFailed    OpState = "failed"
)

type OperationStatus struct {
	State  OpState
	Reason string // set when State is OpFailed
}

func (s OperationStatus) InFlight() bool {
	return s.State == OpInFlight
}

type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible, dismissible message raised by the coordinator.
type Notice struct {
	ID      int
	Level   NoticeLevel
	Message string
}

// Controls reports which triggering controls are enabled.
type Controls struct {
	SubmitEnabled  bool
	HistoryEnabled bool
}

// Snapshot is a read-only copy of the coordinator state used for rendering.
type Snapshot struct {
	State    ViewState
	Report   *Report
	History  []ReportSummary
	Files    []FileHandle
	Analyze  OperationStatus
	Listing  OperationStatus
	Detail   OperationStatus
	Notices  []Notice
	Controls Controls
}
