package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/de-tools/fin-health/pkg/runtime/terminal/commands"
	"github.com/de-tools/fin-health/pkg/runtime/terminal/export"
	"github.com/de-tools/fin-health/pkg/services/config"
	"github.com/de-tools/fin-health/pkg/services/coordinator"
	"github.com/de-tools/fin-health/pkg/services/theme"
	"github.com/de-tools/fin-health/pkg/store/client"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	opts     Options
	output   io.Writer
	runtime  *commands.Runtime
	observer *theme.Observer
	rootCmd  *cobra.Command

	configFile   string
	profilesFile string
	profile      string
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Input  io.Reader
	// LogOutput receives structured logs; stderr when nil.
	LogOutput io.Writer
	// Store replaces the HTTP report store, mainly for tests.
	Store client.ReportStore
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	output := &syncWriter{w: opts.Output}
	cli := &CLI{
		opts:   opts,
		output: output,
		runtime: &commands.Runtime{
			Reporter: export.NewReporter(output),
			Charts:   export.NewChartWriter(),
		},
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides the command-line arguments.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "finhealth",
		Short:              "Financial health reports from uploaded statements",
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  cli.setup,
		PersistentPostRunE: cli.teardown,
	}
	cmd.SetOut(cli.output)
	cmd.SetErr(cli.output)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.configFile, "config", "c", "", "Path to a config file (yaml, json or toml)")
	flags.StringVar(&cli.profilesFile, "profiles-file", "", "Path to the profiles file (default is $HOME/.finhealthcfg)")
	flags.StringVarP(&cli.profile, "profile", "p", "", "Profile to read from the profiles file")
	flags.String("base-url", "", "Base URL of the report service")
	flags.Duration("timeout", 0, "Timeout for each request to the report service")
	flags.Int("history-limit", 0, "Maximum number of past reports to request")
	flags.Bool("fetch-details", false, "Load the full report when a history entry is selected")
	flags.String("theme-file", "", "File holding the preferred color scheme (light or dark)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.runtime))
	cmd.AddCommand(commands.NewReportsCmd(cli.runtime))
	cmd.AddCommand(commands.NewReportCmd(cli.runtime))
	cmd.AddCommand(commands.NewShellCmd(cli.runtime, cli.opts.Input))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, config.LoadOptions{
		ConfigFile:   cli.configFile,
		ProfilesFile: cli.profilesFile,
		Profile:      cli.profile,
		Flags:        cmd.Flags(),
	})
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.opts.LogOutput, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	store := cli.opts.Store
	if store == nil {
		store, err = client.NewHTTPClient(client.Options{
			BaseURL:      cfg.BaseURL,
			Timeout:      cfg.Timeout,
			HistoryLimit: cfg.HistoryLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to create report client: %w", err)
		}
	}

	cli.runtime.Config = cfg
	cli.runtime.Store = store
	cli.runtime.Coordinator = coordinator.New(coordinator.Options{
		Store:        store,
		FetchDetails: cfg.FetchDetails,
	})

	cli.observer = theme.NewObserver(theme.NewSource(cfg.ThemeFile))
	cli.observer.Start(ctx)

	logger.Debug().Str("base_url", cfg.BaseURL).Msg("configuration loaded")
	return nil
}

func (cli *CLI) teardown(_ *cobra.Command, _ []string) error {
	if cli.observer != nil {
		cli.observer.Stop()
	}
	return nil
}

// syncWriter serializes writes from the shell and background renders.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
