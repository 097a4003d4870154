package commands

import (
	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/de-tools/fin-health/pkg/runtime/terminal/export"
	"github.com/de-tools/fin-health/pkg/services/coordinator"
	"github.com/de-tools/fin-health/pkg/store/client"
)

// Runtime holds the dependencies shared by all commands. It is populated by
// the root command once configuration has been loaded.
type Runtime struct {
	Config      *domain.Config
	Store       client.ReportStore
	Coordinator *coordinator.Coordinator
	Reporter    *export.Reporter
	Charts      *export.ChartWriter
}
