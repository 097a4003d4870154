package main

import (
	"fmt"
	"os"

	"github.com/de-tools/fin-health/pkg/server"
	"github.com/de-tools/fin-health/pkg/services/config"
	"github.com/de-tools/fin-health/pkg/services/coordinator"
	"github.com/de-tools/fin-health/pkg/services/theme"
	"github.com/de-tools/fin-health/pkg/store/client"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath      string
	profilesPath string
	profile      string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:          "web",
		Short:        "Start the FinHealth web dashboard",
		SilenceUsage: true,
		RunE:         runServer,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfgPath, "config", "c", "", "Path to a config file (yaml, json or toml)")
	flags.StringVar(&profilesPath, "profiles-file", config.DefaultProfilesPath(),
		"Path to the profiles file (default is $HOME/.finhealthcfg)")
	flags.StringVarP(&profile, "profile", "p", "", "Profile to read from the profiles file")
	flags.String("base-url", "", "Base URL of the report service")
	flags.Duration("timeout", 0, "Timeout for each request to the report service")
	flags.Int("history-limit", 0, "Maximum number of past reports to request")
	flags.Bool("fetch-details", false, "Load the full report when a history entry is selected")
	flags.String("theme-file", "", "File holding the preferred color scheme (light or dark)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("host", "", "Address to listen on")
	flags.Int("port", 0, "Port to listen on")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cmd.Context(), config.LoadOptions{
		ConfigFile:   cfgPath,
		ProfilesFile: profilesPath,
		Profile:      profile,
		Flags:        cmd.Flags(),
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	store, err := client.NewHTTPClient(client.Options{
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.Timeout,
		HistoryLimit: cfg.HistoryLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create report client: %w", err)
	}

	observer := theme.NewObserver(theme.NewSource(cfg.ThemeFile))
	observer.Start(ctx)
	defer observer.Stop()

	coord := coordinator.New(coordinator.Options{
		Store:        store,
		FetchDetails: cfg.FetchDetails,
	})

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Dur("timeout", cfg.Timeout).
		Bool("fetch_details", cfg.FetchDetails).
		Msg("configuration loaded")

	webAPI, err := server.NewWebAPI(logger, server.Config{
		Addr:         cfg.Server.Addr(),
		Dependencies: server.Dependencies{Coordinator: coord},
	})
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	return webAPI.Start()
}
