// Package global provides CLI global flags.
package global

import (
	"strings"

	"github.com/urfave/cli/v2"
)

const (
	EnvVarPrefix = "WILSON_"

	ConfigFlagName            = "config"
	WorkingDirFlagName        = "working-dir"
	LogLevelFlagName          = "log-level"
	LogFormatFlagName         = "log-format"
	NoCacheFlagName           = "no-cache"
	TelemetryExporterFlagName = "telemetry-exporter"

	DefaultLogLevel = "info"
)

// Options holds the values of the global flags.
type Options struct {
	ConfigPath        string
	WorkingDir        string
	LogLevel          string
	LogFormat         string
	TelemetryExporter string
	NoCache           bool
}

// NewFlags creates the global flags writing into opts.
func NewFlags(opts *Options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        ConfigFlagName,
			EnvVars:     envVars(ConfigFlagName),
			Usage:       "Path to the HCL config file. Defaults to wilson.hcl in the working directory.",
			Destination: &opts.ConfigPath,
		},
		&cli.StringFlag{
			Name:        WorkingDirFlagName,
			EnvVars:     envVars(WorkingDirFlagName),
			Usage:       "The project root containing the component roots.",
			Destination: &opts.WorkingDir,
		},
		&cli.StringFlag{
			Name:        LogLevelFlagName,
			EnvVars:     envVars(LogLevelFlagName),
			Usage:       "Sets the logging level: error, warn, info, debug or trace.",
			Value:       DefaultLogLevel,
			Destination: &opts.LogLevel,
		},
		&cli.StringFlag{
			Name:        LogFormatFlagName,
			EnvVars:     envVars(LogFormatFlagName),
			Usage:       "Sets the log format: text or json.",
			Destination: &opts.LogFormat,
		},
		&cli.StringFlag{
			Name:        TelemetryExporterFlagName,
			EnvVars:     envVars(TelemetryExporterFlagName),
			Usage:       "Metric exporter: none or console.",
			Destination: &opts.TelemetryExporter,
		},
		&cli.BoolFlag{
			Name:        NoCacheFlagName,
			EnvVars:     envVars(NoCacheFlagName),
			Usage:       "Rebuild the libraries instead of reading the cache.",
			Destination: &opts.NoCache,
		},
	}
}

// envVars returns the environment variable of a flag, e.g. `WILSON_LOG_LEVEL` for `log-level`.
func envVars(name string) []string {
	return []string{EnvVarPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}
