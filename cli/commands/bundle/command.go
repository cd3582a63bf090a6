// Package bundle provides the `bundle` command writing a component bundle or the core bundle.
package bundle

import (
	"github.com/hightail/wilson-sub000/cli/commands/common"
	"github.com/hightail/wilson-sub000/internal/component"
	"github.com/hightail/wilson-sub000/internal/resolver"
	"github.com/hightail/wilson-sub000/options"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "bundle"

	CoreFlagName  = "core"
	ForceFlagName = "force"
)

func NewCommand(opts *options.ResolverOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Write the script bundle of a component, or the core bundle with --core.",
		ArgsUsage: "[<component>]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  CoreFlagName,
				Usage: "Write the core bundle.",
			},
			&cli.BoolFlag{
				Name:  ForceFlagName,
				Usage: "Rewrite the core bundle even if it exists for the current version.",
			},
		},
		Action: func(ctx *cli.Context) error {
			expected := 1
			if ctx.Bool(CoreFlagName) {
				expected = 0
			}

			if err := common.RequireArgs(ctx, expected); err != nil {
				return err
			}

			return common.RunWithResolver(ctx, opts, func(r *resolver.Resolver) error {
				var (
					artifact *component.Artifact
					err      error
				)

				if ctx.Bool(CoreFlagName) {
					artifact, err = r.GenerateCoreBundle(ctx.Context, ctx.Bool(ForceFlagName))
				} else {
					artifact, err = r.GenerateComponentBundle(ctx.Context, ctx.Args().First())
				}

				if err != nil {
					return err
				}

				return common.PrintJSON(ctx.App.Writer, artifact)
			})
		},
	}
}
