// Package checkversion provides the `check-version` command telling a client which component
// version to use.
package checkversion

import (
	"github.com/hightail/wilson-sub000/cli/commands/common"
	"github.com/hightail/wilson-sub000/internal/resolver"
	"github.com/hightail/wilson-sub000/options"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "check-version"
)

func NewCommand(opts *options.ResolverOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Compare a requested version with the served one.",
		ArgsUsage: "<version>",
		Action: func(ctx *cli.Context) error {
			if err := common.RequireArgs(ctx, 1); err != nil {
				return err
			}

			return common.RunWithResolver(ctx, opts, func(r *resolver.Resolver) error {
				return common.PrintJSON(ctx.App.Writer, r.CheckVersion(ctx.Args().First()))
			})
		},
	}
}
