package main

import (
	"context"
	"os"

	"github.com/hightail/wilson-sub000/cli"
	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/hightail/wilson-sub000/options"
	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/joho/godotenv"
)

// The main entrypoint for wilson
func main() {
	opts := options.NewResolverOptions()

	// Variables from a `.env` file in the current directory feed the WILSON_* flag defaults.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		opts.Logger.Warnf("Ignoring .env: %v", err)
	}

	defer errors.Recover(checkForErrorsAndExit(opts))

	app := cli.NewApp(opts)

	ctx := log.ContextWithLogger(context.Background(), opts.Logger)
	err := app.RunContext(ctx, os.Args)

	checkForErrorsAndExit(opts)(err)
}

// If there is an error, display it in the console and exit with a non-zero exit code. Otherwise, exit 0.
// opts.Logger is read at exit time, after the app has configured it from the flags.
func checkForErrorsAndExit(opts *options.ResolverOptions) func(error) {
	return func(err error) {
		if err == nil {
			os.Exit(0)
		}

		opts.Logger.Error(err.Error())

		if errStack := errors.ErrorStack(err); errStack != "" {
			opts.Logger.Trace(errStack)
		}

		os.Exit(1)
	}
}
