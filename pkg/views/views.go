// Package views builds the page model rendered by the terminal and web
// front-ends from a coordinator snapshot.
package views

import (
	"fmt"

	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/de-tools/fin-health/pkg/services/projector"
	"github.com/de-tools/fin-health/pkg/services/staging"
	"github.com/de-tools/fin-health/pkg/services/theme"
)

const (
	AppTitle          = "FinHealth.ai"
	DashboardHeading  = "Financial Overview"
	HistoryHeading    = "Past Reports"
	HistorySubtitle   = "Data fetched from your Database"
	EmptyHistory      = "No history found. Upload a file first!"
	LoadingHistory    = "Loading reports..."
	ButtonGenerate    = "Generate Report"
	ButtonAnalyzing   = "Analyzing..."
	ButtonUploadNew   = "Upload New File"
	ButtonViewDetails = "View Details"
)

type Tab struct {
	Name     domain.View
	Label    string
	Active   bool
	Disabled bool
}

type Page struct {
	Title     string
	Theme     theme.Mode
	State     string
	Tabs      []Tab
	Notices   []domain.Notice
	Dashboard *DashboardView
	History   *HistoryView
}

type DashboardView struct {
	Heading string
	Upload  *UploadView
	Result  *ResultView
}

type UploadView struct {
	Files          []string
	Accept         string
	ButtonLabel    string
	SubmitDisabled bool
}

type ResultView struct {
	Fields projector.Fields
	Series []projector.Point
	Slices []projector.Slice
}

type HistoryView struct {
	Heading  string
	Subtitle string
	Loading  bool
	Failed   bool
	Empty    bool
	Message  string
	Entries  []projector.SummaryFields
}

// Build projects the snapshot for the active view. Only the active view is
// populated.
func Build(snapshot domain.Snapshot, mode theme.Mode) (*Page, error) {
	page := &Page{
		Title:   AppTitle,
		Theme:   mode,
		State:   snapshot.State.String(),
		Notices: snapshot.Notices,
		Tabs: []Tab{
			{
				Name:   domain.ViewDashboard,
				Label:  "Dashboard",
				Active: snapshot.State.View == domain.ViewDashboard,
			},
			{
				Name:     domain.ViewHistory,
				Label:    HistoryHeading,
				Active:   snapshot.State.View == domain.ViewHistory,
				Disabled: !snapshot.Controls.HistoryEnabled,
			},
		},
	}

	switch snapshot.State.View {
	case domain.ViewHistory:
		page.History = buildHistory(snapshot)
	default:
		dashboard, err := buildDashboard(snapshot)
		if err != nil {
			return nil, err
		}
		page.Dashboard = dashboard
	}

	return page, nil
}

func buildDashboard(snapshot domain.Snapshot) (*DashboardView, error) {
	view := &DashboardView{Heading: DashboardHeading}

	if snapshot.State.Phase != domain.PhaseHasReport {
		files := make([]string, 0, len(snapshot.Files))
		for _, f := range snapshot.Files {
			files = append(files, f.Name)
		}
		label := ButtonGenerate
		if snapshot.Analyze.InFlight() {
			label = ButtonAnalyzing
		}
		view.Upload = &UploadView{
			Files:          files,
			Accept:         acceptFilter(),
			ButtonLabel:    label,
			SubmitDisabled: !snapshot.Controls.SubmitEnabled,
		}
		return view, nil
	}

	projection, err := projector.Project(snapshot.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to project report: %w", err)
	}
	view.Result = &ResultView{
		Fields: projection.Formatted,
		Series: projection.Series,
		Slices: projection.Slices,
	}
	return view, nil
}

func buildHistory(snapshot domain.Snapshot) *HistoryView {
	view := &HistoryView{
		Heading:  HistoryHeading,
		Subtitle: HistorySubtitle,
		Loading:  snapshot.State.Phase == domain.PhaseLoading,
		Failed:   snapshot.State.Phase == domain.PhaseError,
	}

	for _, s := range snapshot.History {
		view.Entries = append(view.Entries, projector.ProjectSummary(s))
	}

	switch {
	case view.Loading && len(view.Entries) == 0:
		view.Message = LoadingHistory
	case len(view.Entries) == 0:
		view.Empty = true
		view.Message = EmptyHistory
	}
	return view
}

func acceptFilter() string {
	accept := ""
	for i, ext := range staging.AdvisoryExtensions {
		if i > 0 {
			accept += ","
		}
		accept += ext
	}
	return accept
}
