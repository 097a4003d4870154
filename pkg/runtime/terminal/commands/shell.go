package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/de-tools/fin-health/pkg/services/staging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	shellPrompt = "finhealth> "
	shellHelp   = `Commands:
  select FILE...  stage files for analysis
  submit          send the staged files for analysis
  history         open the past reports view
  dashboard       return to the dashboard
  view ID         show a report from the history list
  new             discard the shown report and upload new files
  dismiss ID      dismiss a notice
  status          print the current view
  wait            block until pending requests finish
  help            show this help
  quit            leave the shell
`
)

var errQuit = errors.New("quit")

type ShellCmd struct {
	rt *Runtime
	in io.Reader
}

func NewShellCmd(rt *Runtime, in io.Reader) *cobra.Command {
	sc := &ShellCmd{rt: rt, in: in}
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}
}

func (sc *ShellCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	in := sc.in
	if in == nil {
		in = os.Stdin
	}

	coord := sc.rt.Coordinator
	updates, unsubscribe := coord.Subscribe()
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		for snapshot := range updates {
			if err := sc.rt.Reporter.Handle(snapshot); err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Msg("render failed")
			}
		}
	}()
	defer func() {
		unsubscribe()
		<-rendered
	}()

	if err := sc.rt.Reporter.Handle(coord.Snapshot()); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("render failed")
	}

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, shellPrompt)
	for scanner.Scan() {
		err := sc.exec(ctx, out, strings.Fields(scanner.Text()))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		fmt.Fprint(out, shellPrompt)
	}
	return scanner.Err()
}

func (sc *ShellCmd) exec(ctx context.Context, out io.Writer, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	coord := sc.rt.Coordinator
	name, args := fields[0], fields[1:]
	switch name {
	case "select":
		if len(args) == 0 {
			return errors.New("usage: select FILE...")
		}
		files, err := staging.FromPaths(args)
		if err != nil {
			return err
		}
		coord.SelectFiles(files)
		return nil
	case "submit":
		return coord.Submit(ctx)
	case "history":
		return coord.OpenHistory(ctx)
	case "dashboard":
		coord.OpenDashboard()
		return nil
	case "view":
		id, err := singleID(args)
		if err != nil {
			return err
		}
		return coord.ViewDetails(ctx, id)
	case "new":
		return coord.ResetReport()
	case "dismiss":
		id, err := singleID(args)
		if err != nil {
			return err
		}
		return coord.DismissNotice(int(id))
	case "status":
		return sc.rt.Reporter.Handle(coord.Snapshot())
	case "wait":
		coord.Wait()
		return nil
	case "help":
		_, err := io.WriteString(out, shellHelp)
		return err
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type help for a list", name)
	}
}

func singleID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	return id, nil
}
