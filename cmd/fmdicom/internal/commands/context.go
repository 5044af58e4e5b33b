package commands

import (
	"github.com/FullMetalEd/fm-dicom/internal/config"
	"github.com/FullMetalEd/fm-dicom/internal/staging"
	"github.com/charmbracelet/log"
)

// RunContext carries everything a subcommand needs beyond its own flags:
// the loaded YAML settings, the shared logger, and the staging manager
// that owns every ZIP extraction for the process lifetime.
type RunContext struct {
	Settings config.Config
	Logger   *log.Logger
	Stager   *staging.Manager
}
