// Package coordinator owns the client view state: the active view, the
// displayed report, the history list and the status of remote operations.
//
// Remote calls run on their own goroutines and are never cancelled. Their
// results are applied to the shared state whenever they arrive, even if the
// user has moved to another view in the meantime. Triggers for an operation
// that is already in flight are rejected with ErrBusy and have no effect.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/de-tools/fin-health/pkg/services/staging"
	"github.com/de-tools/fin-health/pkg/store/client"
	"github.com/rs/zerolog"
)

type Options struct {
	Store   client.ReportStore
	Staging *staging.Staging
	// FetchDetails loads the full record by id when a history entry is
	// selected instead of displaying the list entry itself.
	FetchDetails bool
}

type Coordinator struct {
	store        client.ReportStore
	staging      *staging.Staging
	fetchDetails bool

	mu         sync.Mutex
	view       domain.View
	report     *domain.Report
	history    []domain.ReportSummary
	analyze    domain.OperationStatus
	listing    domain.OperationStatus
	detail     domain.OperationStatus
	notices    []domain.Notice
	nextNotice int

	subscribers map[int]chan domain.Snapshot
	nextSub     int

	inflight sync.WaitGroup
}

func New(opts Options) *Coordinator {
	stage := opts.Staging
	if stage == nil {
		stage = staging.New()
	}

	return &Coordinator{
		store:        opts.Store,
		staging:      stage,
		fetchDetails: opts.FetchDetails,
		view:         domain.ViewDashboard,
		analyze:      domain.OperationStatus{State: domain.OpIdle},
		listing:      domain.OperationStatus{State: domain.OpIdle},
		detail:       domain.OperationStatus{State: domain.OpIdle},
		subscribers:  make(map[int]chan domain.Snapshot),
	}
}

// SelectFiles replaces the staged selection. An empty selection is ignored.
func (c *Coordinator) SelectFiles(files []domain.FileHandle) {
	if len(files) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.staging.Select(files)
	c.publishLocked()
}

// Submit sends the staged files for analysis. The request runs in the
// background; Submit only validates and dispatches it.
func (c *Coordinator) Submit(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != domain.ViewDashboard {
		return ErrInvalidTransition
	}
	if c.analyze.InFlight() {
		return ErrBusy
	}
	if c.report != nil {
		return ErrInvalidTransition
	}

	files := c.staging.Files()
	if len(files) == 0 {
		c.raiseLocked(domain.NoticeWarning, msgEmptySelection)
		c.publishLocked()
		return ErrEmptySelection
	}

	for _, f := range files {
		if !staging.Advisory(f.Name) {
			logger.Warn().Str("file", f.Name).Msg("file type is outside the advisory filter, submitting anyway")
		}
	}

	c.analyze = domain.OperationStatus{State: domain.OpInFlight}
	c.publishLocked()

	c.inflight.Add(1)
	go c.runAnalyze(context.WithoutCancel(ctx), files)
	return nil
}

func (c *Coordinator) runAnalyze(ctx context.Context, files []domain.FileHandle) {
	defer c.inflight.Done()
	logger := zerolog.Ctx(ctx)

	logger.Info().Int("files", len(files)).Msg("submitting files for analysis")
	report, err := c.store.SubmitForAnalysis(ctx, files)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		logger.Error().Err(err).Msg("analysis failed")
		c.analyze = domain.OperationStatus{State: domain.OpFailed, Reason: err.Error()}
		c.raiseLocked(domain.NoticeError, fmt.Sprintf("%s: %v", msgAnalysisFailed, err))
		c.publishLocked()
		return
	}

	logger.Info().Str("health_status", string(report.HealthStatus)).Msg("analysis completed")
	c.analyze = domain.OperationStatus{State: domain.OpSucceeded}
	c.report = report
	c.staging.Clear()
	c.publishLocked()
}

// ResetReport discards the displayed report ("upload new").
func (c *Coordinator) ResetReport() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stateLocked() != domain.DashboardHasReport {
		return ErrInvalidTransition
	}
	c.report = nil
	c.publishLocked()
	return nil
}

// OpenHistory switches to the history view and fetches the report list.
// While the list is loading, returning to the view reuses the pending
// request; a second trigger from the history view is rejected with ErrBusy.
func (c *Coordinator) OpenHistory(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listing.InFlight() {
		if c.view == domain.ViewHistory {
			return ErrBusy
		}
		c.view = domain.ViewHistory
		c.publishLocked()
		return nil
	}

	c.view = domain.ViewHistory
	c.listing = domain.OperationStatus{State: domain.OpInFlight}
	c.publishLocked()

	c.inflight.Add(1)
	go c.runListing(context.WithoutCancel(ctx))
	return nil
}

func (c *Coordinator) runListing(ctx context.Context) {
	defer c.inflight.Done()
	logger := zerolog.Ctx(ctx)

	summaries, err := c.store.ListReports(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		logger.Error().Err(err).Msg("history fetch failed")
		c.listing = domain.OperationStatus{State: domain.OpFailed, Reason: err.Error()}
		c.raiseLocked(domain.NoticeError, fmt.Sprintf("%s (%v)", msgHistoryFailed, err))
		c.publishLocked()
		return
	}

	logger.Debug().Int("reports", len(summaries)).Msg("history fetched")
	c.listing = domain.OperationStatus{State: domain.OpSucceeded}
	c.history = summaries
	c.publishLocked()
}

// OpenDashboard returns to the dashboard view. It is a no-op when the
// dashboard is already shown.
func (c *Coordinator) OpenDashboard() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view == domain.ViewDashboard {
		return
	}
	c.view = domain.ViewDashboard
	c.publishLocked()
}

// ViewDetails displays the history entry with the given id on the dashboard.
// The history list itself is left untouched.
func (c *Coordinator) ViewDetails(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stateLocked() != domain.HistoryLoaded {
		return ErrInvalidTransition
	}

	var summary *domain.ReportSummary
	for i := range c.history {
		if c.history[i].ID == id {
			summary = &c.history[i]
			break
		}
	}
	if summary == nil {
		return fmt.Errorf("%w: %d", ErrUnknownReport, id)
	}

	if !c.fetchDetails {
		c.report = summary.AsReport()
		c.view = domain.ViewDashboard
		c.publishLocked()
		return nil
	}

	if c.detail.InFlight() {
		return ErrBusy
	}
	c.detail = domain.OperationStatus{State: domain.OpInFlight}
	c.publishLocked()

	c.inflight.Add(1)
	go c.runDetail(context.WithoutCancel(ctx), id)
	return nil
}

func (c *Coordinator) runDetail(ctx context.Context, id int64) {
	defer c.inflight.Done()
	logger := zerolog.Ctx(ctx).With().Int64("report_id", id).Logger()

	report, err := c.store.GetReport(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		logger.Error().Err(err).Msg("report fetch failed")
		c.detail = domain.OperationStatus{State: domain.OpFailed, Reason: err.Error()}
		c.raiseLocked(domain.NoticeError, fmt.Sprintf("%s (%v)", msgDetailFailed, err))
		c.publishLocked()
		return
	}

	c.detail = domain.OperationStatus{State: domain.OpSucceeded}
	c.report = report
	// the user asked for this report, but a later navigation wins
	if c.view == domain.ViewHistory {
		c.view = domain.ViewDashboard
	}
	c.publishLocked()
}

// DismissNotice removes a notice from the visible list.
func (c *Coordinator) DismissNotice(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i:i], c.notices[i+1:]...)
			c.publishLocked()
			return nil
		}
	}
	return ErrUnknownNotice
}

func (c *Coordinator) State() domain.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Coordinator) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that receives the latest snapshot after every
// state change. Slow readers only miss intermediate snapshots.
func (c *Coordinator) Subscribe() (<-chan domain.Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan domain.Snapshot, 1)
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subscribers, id)
			close(ch)
		})
	}
}

// Wait blocks until no remote operation is in flight.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

func (c *Coordinator) stateLocked() domain.ViewState {
	if c.view == domain.ViewHistory {
		switch {
		case c.listing.InFlight():
			return domain.HistoryLoading
		case c.listing.State == domain.OpFailed:
			return domain.HistoryError
		default:
			return domain.HistoryLoaded
		}
	}

	switch {
	case c.analyze.InFlight():
		return domain.DashboardLoading
	case c.report != nil:
		return domain.DashboardHasReport
	default:
		return domain.DashboardNoReport
	}
}

func (c *Coordinator) controlsLocked() domain.Controls {
	return domain.Controls{
		SubmitEnabled:  !c.analyze.InFlight(),
		HistoryEnabled: !c.listing.InFlight() || c.view != domain.ViewHistory,
	}
}

func (c *Coordinator) snapshotLocked() domain.Snapshot {
	var report *domain.Report
	if c.report != nil {
		r := *c.report
		report = &r
	}

	history := make([]domain.ReportSummary, len(c.history))
	copy(history, c.history)
	notices := make([]domain.Notice, len(c.notices))
	copy(notices, c.notices)

	return domain.Snapshot{
		State:    c.stateLocked(),
		Report:   report,
		History:  history,
		Files:    c.staging.Files(),
		Analyze:  c.analyze,
		Listing:  c.listing,
		Detail:   c.detail,
		Notices:  notices,
		Controls: c.controlsLocked(),
	}
}

func (c *Coordinator) raiseLocked(level domain.NoticeLevel, message string) {
	c.nextNotice++
	c.notices = append(c.notices, domain.Notice{ID: c.nextNotice, Level: level, Message: message})
}

func (c *Coordinator) publishLocked() {
	if len(c.subscribers) == 0 {
		return
	}

	snapshot := c.snapshotLocked()
	for _, ch := range c.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
