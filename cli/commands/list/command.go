// Package list provides the `list` command printing the names of all page and block components.
package list

import (
	"fmt"

	"github.com/hightail/wilson-sub000/cli/commands/common"
	"github.com/hightail/wilson-sub000/internal/resolver"
	"github.com/hightail/wilson-sub000/options"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "list"

	JSONFlagName = "json"
)

func NewCommand(opts *options.ResolverOptions) *cli.Command {
	var jsonOutput bool

	return &cli.Command{
		Name:  CommandName,
		Usage: "List the component names.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        JSONFlagName,
				Usage:       "Print the names as a JSON array.",
				Destination: &jsonOutput,
			},
		},
		Action: func(ctx *cli.Context) error {
			return common.RunWithResolver(ctx, opts, func(r *resolver.Resolver) error {
				names, err := r.GetComponentNames(ctx.Context)
				if err != nil {
					return err
				}

				if jsonOutput {
					return common.PrintJSON(ctx.App.Writer, names)
				}

				for _, name := range names {
					if _, err := fmt.Fprintln(ctx.App.Writer, name); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}
