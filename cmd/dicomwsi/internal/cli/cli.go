// Package cli wires the dicomwsi subcommands together with kong, the way
// the teacher's cmd/radx wires its own DICOM commands.
package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/build"
	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/commands"
	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/config"
)

const (
	appName        = "dicomwsi"
	appDescription = "Streaming DICOMDIR and WSMIS parser CLI"
)

// CLI is the root command structure.
type CLI struct {
	config.GlobalConfig

	Index commands.IndexCmd `cmd:"" help:"Read a DICOMDIR index"`
	Level commands.LevelCmd `cmd:"" help:"Read a WSMIS level's tile geometry"`
	Scan  commands.ScanCmd  `cmd:"" help:"Batch-classify every .dcm file under a directory"`
}

// Run parses os.Args, validates the global flags, and dispatches to the
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

	if err := cli.GlobalConfig.Validate(); err != nil {
		return err
	}

	logger := setupLogger(&cli.GlobalConfig)
	logger.Debug("dicomwsi starting", "version", version, "commit", commit, "build_date", date)

	if err := ctx.Run(&cli.GlobalConfig); err != nil {
		logger.Error("command failed", "error", err)
		return err
	}
	return nil
}

func setupLogger(cfg *config.GlobalConfig) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	switch cfg.LogLevel {
	case "trace", "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	case "fatal":
		logger.SetLevel(log.FatalLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if !cfg.Pretty {
		logger.SetFormatter(log.LogfmtFormatter)
	}
	if cfg.JSON {
		logger.SetFormatter(log.JSONFormatter)
	}

	log.SetDefault(logger)
	return logger
}

// ParseArgs parses args without dispatching, for tests that want to
// inspect the resulting command tree.
func ParseArgs(args []string, version, commit, date string) (*CLI, *kong.Context, error) {
	build.SetBuildInfo(version, commit, date)

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.Vars{"version": version, "commit": commit, "date": date},
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
