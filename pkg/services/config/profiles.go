package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/fin-health/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// Registry reads named service targets from an ini profiles file:
//
//	[default]
//	base_url = https://fin-health.example.com
//	timeout  = 45s
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*domain.Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*domain.Profile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	baseURL := strings.TrimSpace(section.Key("base_url").String())
	if baseURL == "" {
		return nil, fmt.Errorf("profile %s has no base_url", name)
	}

	profile := &domain.Profile{Name: name, BaseURL: baseURL}
	if section.HasKey("timeout") {
		timeout, err := section.Key("timeout").Duration()
		if err != nil {
			return nil, fmt.Errorf("profile %s has an invalid timeout: %w", name, err)
		}
		profile.Timeout = timeout
	}
	return profile, nil
}
