package cli

import (
	"fmt"
	"os"

	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/build"
	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/commands"
	"github.com/FullMetalEd/fm-dicom/internal/config"
	"github.com/FullMetalEd/fm-dicom/internal/staging"
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

const (
	appName        = "fm-dicom"
	appDescription = "DICOM dataset management CLI: load, merge, anonymize, validate, package, and send studies"
)

// CLI represents the root command structure. Global flags configure the
// logger and locate the YAML configuration file; Tree is the default
// subcommand so a bare path loads and summarizes it.
type CLI struct {
	Config   string `name:"config" type:"path" help:"Path to the YAML configuration file (defaults to the platform config directory)"`
	LogLevel string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Logger verbosity"`
	Debug    bool   `name:"debug" help:"Enable caller-annotated debug logging"`
	Pretty   bool   `name:"pretty" default:"true" negatable:"" help:"Human-readable log output (disable for JSON logs)"`

	Tree      commands.TreeCmd      `cmd:"" name:"tree" default:"withargs" help:"Load files and print the patient/study/series hierarchy"`
	Merge     commands.MergeCmd     `cmd:"" name:"merge" help:"Fold secondary nodes into a primary patient, study, or series"`
	Delete    commands.DeleteCmd    `cmd:"" name:"delete" help:"Delete instances by path"`
	Anonymize commands.AnonymizeCmd `cmd:"" name:"anonymize" help:"Anonymize a copy of the loaded files using a named template"`
	Validate  commands.ValidateCmd  `cmd:"" name:"validate" help:"Run per-file and cross-collection compliance checks"`
	Dicomdir  commands.DicomdirCmd  `cmd:"" name:"dicomdir" help:"Build a standard PS3.10 media storage File-set"`
	Send      commands.SendCmd      `cmd:"" name:"send" help:"Transmit files to a remote AE via C-STORE"`
	Export    commands.ExportCmd    `cmd:"" name:"export" help:"Export files as a flat copy or ZIP archive"`
}

// Run parses arguments, wires up the shared RunContext, and executes the
// selected subcommand.
func Run(version, commit, date string) error {
	build.SetBuildInfo(version, commit, date)

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{
			"version": version,
			"commit":  commit,
			"date":    date,
		},
	)

	logger := setupLogger(cli)

	configPath, err := config.Path(cli.Config)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stager := staging.NewManager()
	defer func() {
		if err := stager.ReleaseAll(); err != nil {
			logger.Warn("Failed to release staging sessions", "error", err)
		}
	}()

	rc := &commands.RunContext{
		Settings: settings,
		Logger:   logger,
		Stager:   stager,
	}

	logger.Debug("fm-dicom starting", "version", version, "commit", commit, "build_date", date)

	if err := ctx.Run(rc); err != nil {
		logger.Error("command failed", "error", err)
		return err
	}
	return nil
}

// setupLogger configures the global logger based on the root flags.
func setupLogger(cli *CLI) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    cli.Debug,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	switch cli.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	if !cli.Pretty {
		logger.SetFormatter(log.JSONFormatter)
	}

	log.SetDefault(logger)
	return logger
}

// ParseArgs is a convenience function for testing: it parses arguments
// without executing the selected command.
func ParseArgs(args []string, version, commit, date string) (*CLI, *kong.Context, error) {
	build.SetBuildInfo(version, commit, date)

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.Vars{
			"version": version,
			"commit":  commit,
			"date":    date,
		},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create parser: %w", err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return cli, ctx, nil
}
