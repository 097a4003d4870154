// Package config assembles the client configuration from defaults, an
// optional config file, an optional ini profile, FINHEALTH_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix           = "FINHEALTH"
	DefaultProfilesFile = ".finhealthcfg"
)

var ErrMissingBaseURL = errors.New("base_url is required: set it in the config file, a profile, FINHEALTH_BASE_URL or --base-url")

type LoadOptions struct {
	ConfigFile   string
	ProfilesFile string
	Profile      string
	Flags        *pflag.FlagSet
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"base-url":      "base_url",
	"timeout":       "timeout",
	"history-limit": "history_limit",
	"fetch-details": "fetch_details",
	"theme-file":    "theme_file",
	"log-level":     "log_level",
	"host":          "server.host",
	"port":          "server.port",
}

func Load(ctx context.Context, opts LoadOptions) (*domain.Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if opts.Profile != "" {
		path := opts.ProfilesFile
		if path == "" {
			path = DefaultProfilesPath()
		}
		registry, err := NewRegistry(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load profiles file: %w", err)
		}
		profile, err := registry.GetProfile(ctx, opts.Profile)
		if err != nil {
			return nil, err
		}

		values := map[string]any{"base_url": profile.BaseURL}
		if profile.Timeout > 0 {
			values["timeout"] = profile.Timeout.String()
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, fmt.Errorf("failed to apply profile %s: %w", opts.Profile, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *domain.Config) error {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", cfg.HistoryLimit)
	}
	return nil
}

func DefaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfilesFile
	}
	return filepath.Join(home, DefaultProfilesFile)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("history_limit", 0)
	v.SetDefault("fetch_details", false)
	v.SetDefault("theme_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
}
