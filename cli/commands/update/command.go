// Package update provides the `update` command applying the change list to the cached libraries.
package update

import (
	"github.com/hightail/wilson-sub000/cli/commands/common"
	"github.com/hightail/wilson-sub000/internal/resolver"
	"github.com/hightail/wilson-sub000/options"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "update"

	ChangeListFlagName = "change-list"
)

func NewCommand(opts *options.ResolverOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Apply the change list and print the affected components.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        ChangeListFlagName,
				Usage:       "Path of the change list. Defaults to changes.json in the cache directory.",
				Destination: &opts.ChangeListPath,
			},
		},
		Action: func(ctx *cli.Context) error {
			return common.RunWithResolver(ctx, opts, func(r *resolver.Resolver) error {
				result, err := r.ApplyChanges(ctx.Context)
				if err != nil {
					return err
				}

				if result == nil {
					r.Options().Logger.Infof("No changes to apply")
					return nil
				}

				return common.PrintJSON(ctx.App.Writer, result)
			})
		},
	}
}
