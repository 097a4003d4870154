package commands

import (
	"errors"
	"fmt"

	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/de-tools/fin-health/pkg/services/projector"
	"github.com/de-tools/fin-health/pkg/services/staging"
	"github.com/spf13/cobra"
)

var ErrAnalysisFailed = errors.New("analysis failed")

type AnalyzeCmd struct {
	chartPath string
	rt        *Runtime
}

func NewAnalyzeCmd(rt *Runtime) *cobra.Command {
	ac := &AnalyzeCmd{rt: rt}
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Upload financial files and print the resulting report",
		Args:  cobra.MinimumNArgs(1),
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.chartPath, "chart", "", "Write the cash-flow chart to this file (.svg or .png)")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	files, err := staging.FromPaths(args)
	if err != nil {
		return err
	}

	coord := ac.rt.Coordinator
	coord.SelectFiles(files)
	if err := coord.Submit(ctx); err != nil {
		return fmt.Errorf("failed to submit files: %w", err)
	}
	coord.Wait()

	snapshot := coord.Snapshot()
	if err := ac.rt.Reporter.Handle(snapshot); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if snapshot.Analyze.State == domain.OpFailed {
		return fmt.Errorf("%w: %s", ErrAnalysisFailed, snapshot.Analyze.Reason)
	}

	if ac.chartPath != "" {
		projection, err := projector.Project(snapshot.Report)
		if err != nil {
			return err
		}
		if err := ac.rt.Charts.WriteFile(ac.chartPath, projection.Slices); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", ac.chartPath)
	}

	return nil
}
