package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/spf13/cobra"
)

var ErrHistoryFailed = errors.New("history fetch failed")

type ReportsCmd struct {
	rt *Runtime
}

func NewReportsCmd(rt *Runtime) *cobra.Command {
	rc := &ReportsCmd{rt: rt}
	return &cobra.Command{
		Use:   "reports",
		Short: "List past reports, newest first",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}
}

func (rc *ReportsCmd) run(cmd *cobra.Command, _ []string) error {
	coord := rc.rt.Coordinator
	if err := coord.OpenHistory(cmd.Context()); err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	coord.Wait()

	snapshot := coord.Snapshot()
	if err := rc.rt.Reporter.Handle(snapshot); err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}
	if snapshot.Listing.State == domain.OpFailed {
		return fmt.Errorf("%w: %s", ErrHistoryFailed, snapshot.Listing.Reason)
	}
	return nil
}

type ReportCmd struct {
	rt *Runtime
}

func NewReportCmd(rt *Runtime) *cobra.Command {
	rc := &ReportCmd{rt: rt}
	return &cobra.Command{
		Use:   "report ID",
		Short: "Print a stored report",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.run,
	}
}

func (rc *ReportCmd) run(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", args[0], err)
	}

	report, err := rc.rt.Store.GetReport(cmd.Context(), id)
	if err != nil {
		return err
	}

	return rc.rt.Reporter.Handle(domain.Snapshot{
		State:  domain.DashboardHasReport,
		Report: report,
		Controls: domain.Controls{
			SubmitEnabled:  true,
			HistoryEnabled: true,
		},
	})
}
