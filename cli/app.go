// Package cli wires the wilson command line: global flags, config loading and the commands.
package cli

import (
	"io"
	"os"

	"github.com/hightail/wilson-sub000/cli/commands"
	"github.com/hightail/wilson-sub000/cli/flags/global"
	"github.com/hightail/wilson-sub000/config"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/hightail/wilson-sub000/telemetry"
	"github.com/hightail/wilson-sub000/util"
	"github.com/urfave/cli/v2"
)

const AppName = "wilson"

// Version is set at build time with `-ldflags "-X github.com/hightail/wilson-sub000/cli.Version=..."`.
var Version = "dev"

// NewApp creates the wilson CLI app. The commands share opts, which are completed from the
// global flags and the config file before any command runs.
func NewApp(opts *options.ResolverOptions) *cli.App {
	globalOpts := &global.Options{}
	shutdown := telemetry.ShutdownFunc(nil)

	app := cli.NewApp()
	app.Name = AppName
	app.Usage = "Resolves component dependencies and bundles their scripts."
	app.UsageText = "wilson [global options] <command> [options]"
	app.Version = Version
	app.Writer = opts.Writer
	app.ErrWriter = opts.ErrWriter
	app.Flags = global.NewFlags(globalOpts)
	app.Commands = commands.NewCommands(opts)
	app.Before = func(ctx *cli.Context) error {
		var err error

		if err = initialSetup(ctx, opts, globalOpts); err != nil {
			return err
		}

		shutdown, err = telemetry.Init(ctx.Context, telemetry.Options{Exporter: opts.TelemetryExporter, Writer: opts.ErrWriter})

		return err
	}
	app.After = func(ctx *cli.Context) error {
		if shutdown == nil {
			return nil
		}

		return shutdown(ctx.Context)
	}

	return app
}

func initialSetup(ctx *cli.Context, opts *options.ResolverOptions, globalOpts *global.Options) error {
	level, err := log.ParseLevel(globalOpts.LogLevel)
	if err != nil {
		return errors.New(err)
	}

	format, err := log.ParseFormat(globalOpts.LogFormat)
	if err != nil {
		return errors.New(err)
	}

	opts.Writer = ctx.App.Writer
	opts.ErrWriter = ctx.App.ErrWriter
	opts.Logger = log.New(log.WithLevel(level), log.WithFormat(format), log.WithOutput(opts.ErrWriter))

	// --- WorkingDir
	workingDir := globalOpts.WorkingDir
	if workingDir == "" {
		if workingDir, err = os.Getwd(); err != nil {
			return errors.New(err)
		}
	}

	if opts.WorkingDir, err = util.CanonicalPath(workingDir, "."); err != nil {
		return err
	}

	// --- ConfigPath
	configPath := globalOpts.ConfigPath
	if configPath == "" {
		configPath = config.FindConfigFile(opts.WorkingDir)
	} else if configPath, err = util.CanonicalPath(configPath, opts.WorkingDir); err != nil {
		return err
	}

	if configPath != "" {
		if err := config.LoadFile(opts, configPath); err != nil {
			return err
		}
	}

	// --- flags win over the config file
	if globalOpts.NoCache {
		opts.UseCache = false
	}

	if globalOpts.TelemetryExporter != "" {
		opts.TelemetryExporter = globalOpts.TelemetryExporter
	}

	if err := opts.Normalize(); err != nil {
		return err
	}

	opts.Logger.Debugf("wilson %s in %s", Version, opts.WorkingDir)

	return nil
}

// NewDefaultApp creates the app for the given writers with default options.
func NewDefaultApp(writer, errWriter io.Writer) *cli.App {
	opts := options.NewResolverOptions()
	opts.Writer = writer
	opts.ErrWriter = errWriter

	return NewApp(opts)
}
