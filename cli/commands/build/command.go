// Package build provides the `build` command, which loads or builds the service and component
// libraries and reports their size.
package build

import (
	"fmt"

	"github.com/hightail/wilson-sub000/cli/commands/common"
	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/resolver"
	"github.com/hightail/wilson-sub000/options"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "build"

	ForceFlagName = "force"
)

func NewCommand(opts *options.ResolverOptions) *cli.Command {
	var force bool

	return &cli.Command{
		Name:  CommandName,
		Usage: "Build the service and component libraries, reusing the cache unless --force is set.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        ForceFlagName,
				Usage:       "Rescan every root even if the libraries are cached.",
				Destination: &force,
			},
		},
		Action: func(ctx *cli.Context) error {
			if force {
				opts.UseCache = false
			}

			return common.RunWithResolver(ctx, opts, func(r *resolver.Resolver) error {
				return Run(ctx, r)
			})
		},
	}
}

// Run prints the number of entries of both libraries.
func Run(ctx *cli.Context, r *resolver.Resolver) error {
	for _, name := range []string{component.ServicesLibrary, component.ComponentsLibrary} {
		lib, err := r.Store().Get(ctx.Context, name)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(ctx.App.Writer, "%s: %d\n", name, len(lib)); err != nil {
			return err
		}
	}

	return nil
}
